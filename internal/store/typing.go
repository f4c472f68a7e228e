package store

import (
	"maps"
	"time"
)

// TypingTable maps (channelId, userId) to the instant the entry
// expires. The table is passive data; the push bridge owns the timers
// that synthesize TypingEnded when the silence window elapses.
type TypingTable struct {
	byChannel map[string]map[string]time.Time
}

func newTypingTable() *TypingTable {
	return &TypingTable{byChannel: map[string]map[string]time.Time{}}
}

func (t *TypingTable) clone() *TypingTable {
	return &TypingTable{byChannel: maps.Clone(t.byChannel)}
}

// TypingUserIDs returns the users currently marked typing in a channel.
func (t *TypingTable) TypingUserIDs(channelID string) []string {
	entries := t.byChannel[channelID]
	out := make([]string, 0, len(entries))
	for id := range entries {
		out = append(out, id)
	}
	return out
}

func (t *TypingTable) IsTyping(channelID, userID string) bool {
	_, ok := t.byChannel[channelID][userID]
	return ok
}

func (t *TypingTable) reduce(action Action) *TypingTable {
	switch a := action.(type) {
	case TypingStarted:
		next := t.clone()
		entries := maps.Clone(next.byChannel[a.ChannelID])
		if entries == nil {
			entries = map[string]time.Time{}
		}
		entries[a.UserID] = a.ExpiresAt
		next.byChannel[a.ChannelID] = entries
		return next
	case TypingEnded:
		if !t.IsTyping(a.ChannelID, a.UserID) {
			return t
		}
		next := t.clone()
		entries := maps.Clone(next.byChannel[a.ChannelID])
		delete(entries, a.UserID)
		if len(entries) == 0 {
			delete(next.byChannel, a.ChannelID)
		} else {
			next.byChannel[a.ChannelID] = entries
		}
		return next
	case MessageReceived:
		// a delivered message implies the author stopped typing
		m := a.Message
		if !t.IsTyping(m.ChannelID, m.AuthorUserID) {
			return t
		}
		return t.reduce(TypingEnded{ChannelID: m.ChannelID, UserID: m.AuthorUserID})
	default:
		return t
	}
}

// dropChannel retracts a deleted channel's typing entries.
func (t *TypingTable) dropChannel(channelID string) *TypingTable {
	if _, ok := t.byChannel[channelID]; !ok {
		return t
	}
	next := t.clone()
	delete(next.byChannel, channelID)
	return next
}
