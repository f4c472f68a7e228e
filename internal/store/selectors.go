package store

import (
	"sort"
	"sync"

	"github.com/krel404/shades/internal/types"
)

// Selectors derives read-only views from a snapshot. Results are
// memoized per snapshot identity: asking the same question of the
// same *State returns the same value, including the same slice
// reference, so downstream consumers can use identity comparison to
// skip recomputation.
type Selectors struct {
	mu sync.Mutex

	memberChannels  memo[[]types.Channel]
	dmChannels      memo[[]types.Channel]
	topicChannels   memo[[]types.Channel]
	starredChannels memo[[]types.Channel]
	publicChannels  memo[[]types.Channel]

	channelMessages map[string]memo[[]types.Message]
	channelMembers  map[string]memo[[]types.User]
	typingMembers   map[string]memo[[]types.User]
	mentionCounts   map[string]memo[int]
}

type memo[T any] struct {
	state *State
	value T
}

func NewSelectors() *Selectors {
	return &Selectors{
		channelMessages: map[string]memo[[]types.Message]{},
		channelMembers:  map[string]memo[[]types.User]{},
		typingMembers:   map[string]memo[[]types.User]{},
		mentionCounts:   map[string]memo[int]{},
	}
}

// MemberChannels lists the channels the viewer belongs to, most
// recently active first.
func (sel *Selectors) MemberChannels(s *State) []types.Channel {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.memberChannels.state == s {
		return sel.memberChannels.value
	}

	var out []types.Channel
	for id, c := range s.Channels.byID {
		if s.Channels.HasMember(id, s.ViewerID) {
			out = append(out, c)
		}
	}
	sortByActivity(out)
	sel.memberChannels = memo[[]types.Channel]{state: s, value: out}
	return out
}

// DMChannels lists the viewer's DM channels, most recently active first.
func (sel *Selectors) DMChannels(s *State) []types.Channel {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.dmChannels.state == s {
		return sel.dmChannels.value
	}

	var out []types.Channel
	for id, c := range s.Channels.byID {
		if c.Kind == types.ChannelKindDM && s.Channels.HasMember(id, s.ViewerID) {
			out = append(out, c)
		}
	}
	sortByActivity(out)
	sel.dmChannels = memo[[]types.Channel]{state: s, value: out}
	return out
}

// TopicChannels lists the viewer's topic channels, most recently
// active first.
func (sel *Selectors) TopicChannels(s *State) []types.Channel {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.topicChannels.state == s {
		return sel.topicChannels.value
	}

	var out []types.Channel
	for id, c := range s.Channels.byID {
		if c.Kind == types.ChannelKindTopic && s.Channels.HasMember(id, s.ViewerID) {
			out = append(out, c)
		}
	}
	sortByActivity(out)
	sel.topicChannels = memo[[]types.Channel]{state: s, value: out}
	return out
}

// StarredChannels lists the channels the viewer has starred, most
// recently active first.
func (sel *Selectors) StarredChannels(s *State) []types.Channel {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.starredChannels.state == s {
		return sel.starredChannels.value
	}

	var out []types.Channel
	for id, c := range s.Channels.byID {
		if s.Channels.readStates[id].StarID != "" {
			out = append(out, c)
		}
	}
	sortByActivity(out)
	sel.starredChannels = memo[[]types.Channel]{state: s, value: out}
	return out
}

// PublicChannels lists open topic channels ordered by member count
// descending, name ascending.
func (sel *Selectors) PublicChannels(s *State) []types.Channel {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if sel.publicChannels.state == s {
		return sel.publicChannels.value
	}

	var out []types.Channel
	for _, c := range s.Channels.byID {
		if c.Kind == types.ChannelKindTopic && c.Access == types.AccessOpen {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := s.Channels.MemberCount(out[i].ID), s.Channels.MemberCount(out[j].ID)
		if ci != cj {
			return ci > cj
		}
		return out[i].Name < out[j].Name
	})
	sel.publicChannels = memo[[]types.Channel]{state: s, value: out}
	return out
}

// ChannelMessages returns a channel's messages in display order.
func (sel *Selectors) ChannelMessages(s *State, channelID string) []types.Message {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if m, ok := sel.channelMessages[channelID]; ok && m.state == s {
		return m.value
	}

	out := s.Messages.ChannelMessages(channelID)
	sel.channelMessages[channelID] = memo[[]types.Message]{state: s, value: out}
	return out
}

// ChannelMembers resolves a channel's member records, sorted by display
// name. Members without a fetched user record are skipped.
func (sel *Selectors) ChannelMembers(s *State, channelID string) []types.User {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if m, ok := sel.channelMembers[channelID]; ok && m.state == s {
		return m.value
	}

	channel, _ := s.Channels.Channel(channelID)
	out := make([]types.User, 0, len(channel.MemberUserIDs))
	for _, id := range channel.MemberUserIDs {
		if u, ok := s.Users.User(id); ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	sel.channelMembers[channelID] = memo[[]types.User]{state: s, value: out}
	return out
}

// ChannelHasUnread reports whether the channel has activity newer than
// the viewer's read marker.
func (sel *Selectors) ChannelHasUnread(s *State, channelID string) bool {
	return s.Channels.HasUnread(channelID)
}

// ChannelMentionCount counts messages since the viewer's read marker
// that mention the viewer.
func (sel *Selectors) ChannelMentionCount(s *State, channelID string) int {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if m, ok := sel.mentionCounts[channelID]; ok && m.state == s {
		return m.value
	}

	lastReadAt := s.Channels.readStates[channelID].LastReadAt
	var count int
	for _, m := range s.Messages.ChannelMessages(channelID) {
		if !messageTime(m).After(lastReadAt) {
			continue
		}
		if m.AuthorUserID != s.ViewerID && types.MentionsUser(m.Content, s.ViewerID) {
			count++
		}
	}
	sel.mentionCounts[channelID] = memo[int]{state: s, value: count}
	return count
}

// TypingMembers resolves the users currently typing in a channel,
// excluding the viewer.
func (sel *Selectors) TypingMembers(s *State, channelID string) []types.User {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	if m, ok := sel.typingMembers[channelID]; ok && m.state == s {
		return m.value
	}

	ids := s.Typing.TypingUserIDs(channelID)
	sort.Strings(ids)
	out := make([]types.User, 0, len(ids))
	for _, id := range ids {
		if id == s.ViewerID {
			continue
		}
		if u, ok := s.Users.User(id); ok {
			out = append(out, u)
		}
	}
	sel.typingMembers[channelID] = memo[[]types.User]{state: s, value: out}
	return out
}

// DMChannelWithMembers resolves an existing DM channel for a member
// set, regardless of ordering.
func (sel *Selectors) DMChannelWithMembers(s *State, memberIDs []string) (types.Channel, bool) {
	id, ok := s.Channels.DMWithMembers(memberIDs)
	if !ok {
		return types.Channel{}, false
	}
	return s.Channels.Channel(id)
}

// UserByWallet looks up a user by wallet address, case-insensitively.
func (sel *Selectors) UserByWallet(s *State, addr string) (types.User, bool) {
	return s.Users.UserByWallet(addr)
}

func sortByActivity(channels []types.Channel) {
	sort.Slice(channels, func(i, j int) bool {
		if !channels[i].LastMessageAt.Equal(channels[j].LastMessageAt) {
			return channels[i].LastMessageAt.After(channels[j].LastMessageAt)
		}
		return channels[i].ID < channels[j].ID
	})
}
