package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krel404/shades/internal/types"
)

func Test_mergeChannels_rightBias(t *testing.T) {
	existing := types.Channel{
		ID:          "c1",
		Kind:        types.ChannelKindTopic,
		Name:        "general",
		Description: "old description",
		Access:      types.AccessOpen,
	}
	incoming := types.Channel{
		ID:   "c1",
		Name: "general-renamed",
	}

	merged := mergeChannels(&existing, incoming)
	assert.Equal(t, "general-renamed", merged.Name, "incoming scalar should win")
	assert.Equal(t, "old description", merged.Description, "absent incoming field should not clear")
	assert.Equal(t, types.AccessOpen, merged.Access, "absent access should survive")
}

func Test_mergeChannels_nilExisting(t *testing.T) {
	incoming := types.Channel{ID: "c1", Name: "general"}
	assert.Equal(t, incoming, mergeChannels(nil, incoming))
}

func Test_mergeChannels_associativity(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	a := types.Channel{ID: "c1", Name: "one", MemberUserIDs: []string{"u1"}}
	b := types.Channel{ID: "c1", Description: "desc", LastMessageAt: base}
	c := types.Channel{ID: "c1", Name: "three", Access: types.AccessClosed}

	ab := mergeChannels(&a, b)
	left := mergeChannels(&ab, c)

	bc := mergeChannels(&b, c)
	right := mergeChannels(&a, bc)

	assert.Equal(t, left, right, "merge must be associative for out-of-order arrival")
}

func Test_mergeMessages_clearsOptimisticFlags(t *testing.T) {
	sortKey := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	existing := types.Message{
		TempID:        "tmp-1",
		CorrelationID: "corr-1",
		ChannelID:     "c1",
		SortKey:       sortKey,
		Pending:       true,
	}
	incoming := types.Message{
		ID:        "m1",
		ChannelID: "c1",
		CreatedAt: sortKey.Add(time.Second),
	}

	merged := mergeMessages(&existing, incoming)
	assert.Equal(t, "m1", merged.ID)
	assert.False(t, merged.Pending, "confirmation should clear pending")
	assert.Empty(t, merged.TempID, "confirmation should clear the temp id")
	assert.Equal(t, sortKey, merged.SortKey, "sort key must not move on confirmation")
}

func Test_mergeReactions(t *testing.T) {
	existing := []types.Reaction{
		{Emoji: "🔥", UserIDs: []string{"u1"}},
	}
	incoming := []types.Reaction{
		{Emoji: "🔥", UserIDs: []string{"u1", "u2"}},
		{Emoji: "👍", UserIDs: []string{"u3"}},
	}

	merged := mergeReactions(existing, incoming)
	assert.Equal(t, []types.Reaction{
		{Emoji: "🔥", UserIDs: []string{"u1", "u2"}},
		{Emoji: "👍", UserIDs: []string{"u3"}},
	}, merged, "reactions should union, deduplicating by (emoji, user)")
}

func Test_mergeProposals_votesDedupById(t *testing.T) {
	existing := types.Proposal{
		ID:    "1",
		Votes: []types.Vote{{ID: "v1", VoterID: "u1", Support: 1}},
	}
	incoming := types.Proposal{
		ID: "1",
		Votes: []types.Vote{
			{ID: "v1", VoterID: "u1", Support: 1},
			{ID: "v2", VoterID: "u2", Support: 0},
		},
	}

	merged := mergeProposals(&existing, incoming)
	assert.Len(t, merged.Votes, 2, "duplicate vote ids should collapse")
}

func Test_mergeFeedbackPosts_pendingMatchedByCompositeKey(t *testing.T) {
	pending := types.FeedbackPost{
		ProposalID: "1",
		VoterID:    "0xAbC",
		Support:    1,
		Reason:     "lgtm",
		Pending:    true,
	}
	confirmed := types.FeedbackPost{
		ID:         "fb-1",
		ProposalID: "1",
		VoterID:    "0xabc",
		Support:    1,
		Reason:     "lgtm",
	}

	merged := mergeFeedbackPosts([]types.FeedbackPost{pending}, []types.FeedbackPost{confirmed})
	assert.Len(t, merged, 1, "confirmed counterpart should replace the pending entry")
	assert.Equal(t, "fb-1", merged[0].ID)
	assert.False(t, merged[0].Pending)
}

func Test_mergeFeedbackPosts_distinctPendingKept(t *testing.T) {
	p1 := types.FeedbackPost{ProposalID: "1", VoterID: "u1", Support: 1, Reason: "yes", Pending: true}
	p2 := types.FeedbackPost{ProposalID: "1", VoterID: "u1", Support: 0, Reason: "no", Pending: true}

	merged := mergeFeedbackPosts([]types.FeedbackPost{p1}, []types.FeedbackPost{p2})
	assert.Len(t, merged, 2, "different composite keys must not collapse")
}

func Test_mergeCandidates_latestVersionContent(t *testing.T) {
	existing := types.ProposalCandidate{
		ID: "0xabc-my-candidate",
		LatestVersion: &types.CandidateVersion{
			Content: types.CandidateContent{Title: "Title", Description: "Old"},
		},
	}
	incoming := types.ProposalCandidate{
		ID: "0xabc-my-candidate",
		LatestVersion: &types.CandidateVersion{
			Content: types.CandidateContent{Description: "New"},
		},
	}

	merged := mergeCandidates(&existing, incoming)
	assert.Equal(t, "Title", merged.LatestVersion.Content.Title, "absent title should survive")
	assert.Equal(t, "New", merged.LatestVersion.Content.Description, "incoming description should win")
}
