package store

import (
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/krel404/shades/internal/types"
)

// ReadState is the viewer's per-channel read marker and star flag.
type ReadState struct {
	LastReadAt time.Time
	StarID     string
}

// ChannelTable is the keyed channel mapping plus the indexes derived
// from it: an O(1) membership set per channel, the DM member-set
// index, and the viewer's read state. Tables are immutable; every
// transition returns a new table sharing unchanged maps' contents.
type ChannelTable struct {
	byID       map[string]types.Channel
	members    map[string]map[string]struct{}
	dmIndex    map[string]string
	readStates map[string]ReadState
}

func newChannelTable() *ChannelTable {
	return &ChannelTable{
		byID:       map[string]types.Channel{},
		members:    map[string]map[string]struct{}{},
		dmIndex:    map[string]string{},
		readStates: map[string]ReadState{},
	}
}

func (t *ChannelTable) clone() *ChannelTable {
	return &ChannelTable{
		byID:       maps.Clone(t.byID),
		members:    maps.Clone(t.members),
		dmIndex:    maps.Clone(t.dmIndex),
		readStates: maps.Clone(t.readStates),
	}
}

func (t *ChannelTable) Channel(id string) (types.Channel, bool) {
	c, ok := t.byID[id]
	return c, ok
}

func (t *ChannelTable) Len() int { return len(t.byID) }

// HasMember reports channel membership in O(1).
func (t *ChannelTable) HasMember(channelID, userID string) bool {
	_, ok := t.members[channelID][userID]
	return ok
}

func (t *ChannelTable) MemberCount(channelID string) int {
	return len(t.members[channelID])
}

// DMWithMembers answers "does a DM with exactly these members already
// exist" without a server round trip. Member ordering is irrelevant.
func (t *ChannelTable) DMWithMembers(memberIDs []string) (string, bool) {
	id, ok := t.dmIndex[dmKey(memberIDs)]
	return id, ok
}

func (t *ChannelTable) ReadState(channelID string) ReadState {
	return t.readStates[channelID]
}

// HasUnread reports whether the channel's latest message postdates the
// viewer's read marker.
func (t *ChannelTable) HasUnread(channelID string) bool {
	c, ok := t.byID[channelID]
	if !ok {
		return false
	}
	return c.LastMessageAt.After(t.readStates[channelID].LastReadAt)
}

func dmKey(memberIDs []string) string {
	ids := make([]string, len(memberIDs))
	for i, id := range memberIDs {
		ids[i] = strings.ToLower(id)
	}
	sort.Strings(ids)
	return strings.Join(ids, "+")
}

func memberSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (t *ChannelTable) reduce(action Action) *ChannelTable {
	switch a := action.(type) {
	case ChannelsFetched:
		next := t.clone()
		for _, c := range a.Channels {
			next.upsert(c)
		}
		return next
	case ChannelCreated:
		next := t.clone()
		next.upsert(a.Channel)
		return next
	case ChannelUpdated:
		existing, ok := t.byID[a.ChannelID]
		if !ok {
			return t
		}
		next := t.clone()
		next.upsert(applyChannelPatch(existing, a.Patch))
		return next
	case ChannelDeleted:
		if _, ok := t.byID[a.ChannelID]; !ok {
			return t
		}
		next := t.clone()
		next.remove(a.ChannelID)
		return next
	case MemberJoined:
		c, ok := t.byID[a.ChannelID]
		if !ok || t.HasMember(a.ChannelID, a.UserID) {
			return t
		}
		next := t.clone()
		c.MemberUserIDs = append(append([]string{}, c.MemberUserIDs...), a.UserID)
		next.upsert(c)
		return next
	case MemberLeft:
		c, ok := t.byID[a.ChannelID]
		if !ok || !t.HasMember(a.ChannelID, a.UserID) {
			return t
		}
		next := t.clone()
		members := make([]string, 0, len(c.MemberUserIDs))
		for _, id := range c.MemberUserIDs {
			if id != a.UserID {
				members = append(members, id)
			}
		}
		c.MemberUserIDs = members
		next.upsert(c)
		return next
	case ChannelStarred:
		next := t.clone()
		rs := next.readStates[a.ChannelID]
		rs.StarID = a.StarID
		next.readStates[a.ChannelID] = rs
		return next
	case ChannelUnstarred:
		if t.readStates[a.ChannelID].StarID == "" {
			return t
		}
		next := t.clone()
		rs := next.readStates[a.ChannelID]
		rs.StarID = ""
		next.readStates[a.ChannelID] = rs
		return next
	case ChannelMarkedRead:
		next := t.clone()
		rs := next.readStates[a.ChannelID]
		if a.At.After(rs.LastReadAt) {
			rs.LastReadAt = a.At
		}
		next.readStates[a.ChannelID] = rs
		return next
	default:
		return t
	}
}

// upsert merges an incoming channel record into the table and
// refreshes the derived indexes.
func (t *ChannelTable) upsert(incoming types.Channel) {
	var existing *types.Channel
	if c, ok := t.byID[incoming.ID]; ok {
		existing = &c
	}
	merged := mergeChannels(existing, incoming)
	t.byID[merged.ID] = merged
	t.members[merged.ID] = memberSet(merged.MemberUserIDs)
	if merged.Kind == types.ChannelKindDM && len(merged.MemberUserIDs) > 0 {
		t.dmIndex[dmKey(merged.MemberUserIDs)] = merged.ID
	}
}

// remove drops a channel and every piece of derived state keyed by it.
func (t *ChannelTable) remove(channelID string) {
	c := t.byID[channelID]
	delete(t.byID, channelID)
	delete(t.members, channelID)
	delete(t.readStates, channelID)
	if c.Kind == types.ChannelKindDM {
		key := dmKey(c.MemberUserIDs)
		if t.dmIndex[key] == channelID {
			delete(t.dmIndex, key)
		}
	}
}

// bumpLastMessage advances a channel's lastMessageAt watermark when a
// newer message lands. Called by the root transition on message
// inserts so unread state stays consistent with the message table.
func (t *ChannelTable) bumpLastMessage(channelID string, at time.Time) *ChannelTable {
	c, ok := t.byID[channelID]
	if !ok || !at.After(c.LastMessageAt) {
		return t
	}
	next := t.clone()
	c.LastMessageAt = at
	next.byID[channelID] = c
	return next
}
