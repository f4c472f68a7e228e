package store

import (
	"strconv"
	"strings"

	"github.com/krel404/shades/internal/types"
)

// Merge functions combine two observations of the same entity. They
// are right-biased on scalar fields (incoming wins when it carries a
// value) and union-based on list-shaped fields, which keeps them
// associative so fetch responses and push events commute regardless
// of arrival order.

func mergeChannels(existing *types.Channel, incoming types.Channel) types.Channel {
	if existing == nil {
		return incoming
	}

	merged := *existing
	if incoming.Kind != "" {
		merged.Kind = incoming.Kind
	}
	if incoming.Name != "" {
		merged.Name = incoming.Name
	}
	if incoming.Description != "" {
		merged.Description = incoming.Description
	}
	if incoming.Avatar != "" {
		merged.Avatar = incoming.Avatar
	}
	if incoming.OwnerUserID != "" {
		merged.OwnerUserID = incoming.OwnerUserID
	}
	if incoming.Access != "" {
		merged.Access = incoming.Access
	}
	if incoming.MemberUserIDs != nil {
		merged.MemberUserIDs = incoming.MemberUserIDs
	}
	if incoming.LastMessageAt.After(merged.LastMessageAt) {
		merged.LastMessageAt = incoming.LastMessageAt
	}
	if !incoming.CreatedAt.IsZero() {
		merged.CreatedAt = incoming.CreatedAt
	}
	return merged
}

func applyChannelPatch(c types.Channel, p types.ChannelPatch) types.Channel {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Avatar != nil {
		c.Avatar = *p.Avatar
	}
	if p.Access != nil {
		c.Access = *p.Access
	}
	if p.LastMessageAt != nil {
		c.LastMessageAt = *p.LastMessageAt
	}
	if p.MemberUserIDs != nil {
		c.MemberUserIDs = *p.MemberUserIDs
	}
	return c
}

func mergeMessages(existing *types.Message, incoming types.Message) types.Message {
	if existing == nil {
		return incoming
	}

	merged := *existing
	if incoming.ID != "" {
		merged.ID = incoming.ID
	}
	if incoming.CorrelationID != "" {
		merged.CorrelationID = incoming.CorrelationID
	}
	if incoming.ChannelID != "" {
		merged.ChannelID = incoming.ChannelID
	}
	if incoming.AuthorUserID != "" {
		merged.AuthorUserID = incoming.AuthorUserID
	}
	if !incoming.CreatedAt.IsZero() {
		merged.CreatedAt = incoming.CreatedAt
	}
	if incoming.Content != nil {
		merged.Content = incoming.Content
	}
	if incoming.ReplyToMessageID != "" {
		merged.ReplyToMessageID = incoming.ReplyToMessageID
	}
	if incoming.System {
		merged.System = true
		merged.SystemKind = incoming.SystemKind
		merged.SystemPayload = incoming.SystemPayload
	}
	if incoming.Reactions != nil {
		merged.Reactions = mergeReactions(existing.Reactions, incoming.Reactions)
	}
	// An authoritative observation clears the optimistic flags. The
	// SortKey set at first insertion stays.
	if incoming.ID != "" {
		merged.Pending = false
		merged.Failed = false
		merged.TempID = ""
	}
	return merged
}

// mergeReactions unions two reaction lists, deduplicating user ids
// within each emoji. Existing emoji order is preserved, new emojis
// append in incoming order.
func mergeReactions(existing, incoming []types.Reaction) []types.Reaction {
	if len(existing) == 0 {
		return incoming
	}

	merged := make([]types.Reaction, len(existing))
	copy(merged, existing)

	for _, in := range incoming {
		idx := -1
		for i, r := range merged {
			if r.Emoji == in.Emoji {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, in)
			continue
		}
		merged[idx].UserIDs = unionStrings(merged[idx].UserIDs, in.UserIDs)
	}
	return merged
}

func unionStrings(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func mergeUsers(existing *types.User, incoming types.User) types.User {
	if existing == nil {
		return incoming
	}

	merged := *existing
	if incoming.WalletAddress != "" {
		merged.WalletAddress = types.NormalizeAddress(incoming.WalletAddress)
	}
	if incoming.DisplayName != "" {
		merged.DisplayName = incoming.DisplayName
	}
	if incoming.ProfilePicture != "" {
		merged.ProfilePicture = incoming.ProfilePicture
	}
	// presence is only changed by presence updates, never by a
	// profile observation that happens to omit it
	if incoming.Deleted {
		merged.Deleted = true
	}
	return merged
}

func mergeProposals(existing *types.Proposal, incoming types.Proposal) types.Proposal {
	if existing == nil {
		return incoming
	}

	merged := *existing
	if incoming.Title != "" {
		merged.Title = incoming.Title
	}
	if incoming.State != "" {
		merged.State = incoming.State
	}
	if incoming.ProposerID != "" {
		merged.ProposerID = incoming.ProposerID
	}
	if incoming.Votes != nil {
		merged.Votes = mergeVotes(existing.Votes, incoming.Votes)
	}
	if incoming.FeedbackPosts != nil {
		merged.FeedbackPosts = mergeFeedbackPosts(existing.FeedbackPosts, incoming.FeedbackPosts)
	}
	return merged
}

func mergeCandidates(existing *types.ProposalCandidate, incoming types.ProposalCandidate) types.ProposalCandidate {
	if existing == nil {
		return incoming
	}

	merged := *existing
	if incoming.Slug != "" {
		merged.Slug = incoming.Slug
	}
	if incoming.ProposerID != "" {
		merged.ProposerID = incoming.ProposerID
	}
	if incoming.FeedbackPosts != nil {
		merged.FeedbackPosts = mergeFeedbackPosts(existing.FeedbackPosts, incoming.FeedbackPosts)
	}
	if incoming.LatestVersion != nil {
		if existing.LatestVersion == nil {
			merged.LatestVersion = incoming.LatestVersion
		} else {
			v := *existing.LatestVersion
			if incoming.LatestVersion.Content.Title != "" {
				v.Content.Title = incoming.LatestVersion.Content.Title
			}
			if incoming.LatestVersion.Content.Description != "" {
				v.Content.Description = incoming.LatestVersion.Content.Description
			}
			merged.LatestVersion = &v
		}
	}
	return merged
}

func mergeVotes(existing, incoming []types.Vote) []types.Vote {
	merged := make([]types.Vote, len(existing))
	copy(merged, existing)
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[v.ID] = struct{}{}
	}
	for _, v := range incoming {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		merged = append(merged, v)
	}
	return merged
}

// mergeFeedbackPosts unions two feedback lists. Confirmed posts dedup
// by id. A pending post has no server id yet, so it is matched by a
// synthesized composite key; when a confirmed counterpart is present
// the pending entry is dropped in its favor.
func mergeFeedbackPosts(existing, incoming []types.FeedbackPost) []types.FeedbackPost {
	all := make([]types.FeedbackPost, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)

	var out []types.FeedbackPost
	byID := make(map[string]int)
	byComposite := make(map[string]int)

	for _, p := range all {
		key := feedbackCompositeKey(p)
		if p.ID != "" {
			if i, ok := byID[p.ID]; ok {
				out[i] = p
				continue
			}
			if i, ok := byComposite[key]; ok && out[i].Pending {
				// confirmed counterpart of an optimistic entry
				byID[p.ID] = i
				out[i] = p
				continue
			}
			byID[p.ID] = len(out)
			byComposite[key] = len(out)
			out = append(out, p)
			continue
		}

		// pending: keep only if no entry with the same composite key exists
		if _, ok := byComposite[key]; ok {
			continue
		}
		byComposite[key] = len(out)
		out = append(out, p)
	}
	return out
}

func feedbackCompositeKey(p types.FeedbackPost) string {
	return strings.ToLower(strings.Join([]string{
		p.ProposalID,
		p.CandidateID,
		p.VoterID,
		p.Reason,
		strconv.Itoa(p.Support),
	}, "-"))
}
