package store

import (
	"maps"
	"sort"

	"github.com/krel404/shades/internal/types"
)

// MessageTable keys messages by server id, or temporary id while an
// entry is optimistic. byChannel holds each channel's display order:
// ascending SortKey, ties by key. byCorrelation resolves a correlation
// token to whichever key currently holds that entry, which is what
// lets the confirming record arrive via push or HTTP in either order.
type MessageTable struct {
	byID          map[string]types.Message
	byChannel     map[string][]string
	byCorrelation map[string]string
}

func newMessageTable() *MessageTable {
	return &MessageTable{
		byID:          map[string]types.Message{},
		byChannel:     map[string][]string{},
		byCorrelation: map[string]string{},
	}
}

func (t *MessageTable) clone() *MessageTable {
	return &MessageTable{
		byID:          maps.Clone(t.byID),
		byChannel:     maps.Clone(t.byChannel),
		byCorrelation: maps.Clone(t.byCorrelation),
	}
}

func (t *MessageTable) Message(key string) (types.Message, bool) {
	m, ok := t.byID[key]
	return m, ok
}

func (t *MessageTable) Len() int { return len(t.byID) }

// PendingCount reports how many optimistic entries are still awaiting
// confirmation.
func (t *MessageTable) PendingCount() int {
	var n int
	for _, key := range t.byCorrelation {
		if t.byID[key].Pending {
			n++
		}
	}
	return n
}

// ChannelMessages returns a channel's messages in display order.
func (t *MessageTable) ChannelMessages(channelID string) []types.Message {
	keys := t.byChannel[channelID]
	out := make([]types.Message, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.byID[k])
	}
	return out
}

func (t *MessageTable) reduce(action Action) *MessageTable {
	switch a := action.(type) {
	case MessagesFetched:
		next := t.clone()
		for _, m := range a.Messages {
			next.insertOrMerge(m)
		}
		return next
	case MessageSent:
		next := t.clone()
		next.insertOrMerge(a.Message)
		return next
	case MessageConfirmed:
		next := t.clone()
		next.confirm(a.CorrelationID, a.Message)
		return next
	case MessageSendFailed:
		key, ok := t.byCorrelation[a.CorrelationID]
		if !ok {
			return t
		}
		m := t.byID[key]
		if !m.Pending {
			// already confirmed, the watchdog lost the race
			return t
		}
		next := t.clone()
		m.Pending = false
		m.Failed = true
		next.byID[key] = m
		return next
	case MessageReceived:
		next := t.clone()
		next.insertOrMerge(a.Message)
		return next
	case MessageUpdated:
		m, ok := t.byID[a.MessageID]
		if !ok {
			return t
		}
		next := t.clone()
		if a.Patch.Content != nil {
			m.Content = *a.Patch.Content
		}
		if a.Patch.Reactions != nil {
			m.Reactions = *a.Patch.Reactions
		}
		next.byID[a.MessageID] = m
		return next
	case MessageRemoved:
		if _, ok := t.byID[a.MessageID]; !ok {
			return t
		}
		next := t.clone()
		next.remove(a.MessageID)
		return next
	case ReactionAdded:
		m, ok := t.byID[a.MessageID]
		if !ok {
			return t
		}
		next := t.clone()
		m.Reactions = mergeReactions(m.Reactions, []types.Reaction{{Emoji: a.Emoji, UserIDs: []string{a.UserID}}})
		next.byID[a.MessageID] = m
		return next
	case ReactionRemoved:
		m, ok := t.byID[a.MessageID]
		if !ok {
			return t
		}
		next := t.clone()
		m.Reactions = removeReaction(m.Reactions, a.Emoji, a.UserID)
		next.byID[a.MessageID] = m
		return next
	default:
		return t
	}
}

// insertOrMerge is the single entry point for any observation of a
// message from any source. A record carrying the correlation token of
// a live optimistic entry confirms that entry; a record with a known
// id merges into it; anything else inserts in display order.
func (t *MessageTable) insertOrMerge(m types.Message) {
	if m.SortKey.IsZero() {
		m.SortKey = m.CreatedAt
	}

	if m.CorrelationID != "" {
		if _, ok := t.byCorrelation[m.CorrelationID]; ok {
			t.confirm(m.CorrelationID, m)
			return
		}
	}

	key := m.Key()
	if existing, ok := t.byID[key]; ok {
		merged := mergeMessages(&existing, m)
		merged.SortKey = existing.SortKey
		t.byID[key] = merged
		return
	}

	t.byID[key] = m
	t.insertOrdered(m.ChannelID, key, m)
	if m.CorrelationID != "" {
		t.byCorrelation[m.CorrelationID] = key
	}
}

// confirm replaces the entry a correlation token points at with the
// authoritative record, keeping the entry's position in the channel
// list so confirmation never causes a visible reorder.
func (t *MessageTable) confirm(correlationID string, m types.Message) {
	oldKey, ok := t.byCorrelation[correlationID]
	if !ok {
		t.insertOrMerge(m)
		return
	}

	existing := t.byID[oldKey]
	merged := mergeMessages(&existing, m)
	merged.SortKey = existing.SortKey

	newKey := merged.Key()
	if newKey != oldKey {
		// the confirmed id may already be present if the push event
		// landed before this confirmation; collapse to one entry
		if _, dup := t.byID[newKey]; dup {
			t.remove(newKey)
		}
		delete(t.byID, oldKey)
		t.replaceKey(merged.ChannelID, oldKey, newKey)
	}
	t.byID[newKey] = merged
	t.byCorrelation[correlationID] = newKey
}

func (t *MessageTable) remove(key string) {
	m, ok := t.byID[key]
	if !ok {
		return
	}
	delete(t.byID, key)
	if m.CorrelationID != "" && t.byCorrelation[m.CorrelationID] == key {
		delete(t.byCorrelation, m.CorrelationID)
	}

	keys := t.byChannel[m.ChannelID]
	next := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != key {
			next = append(next, k)
		}
	}
	t.byChannel[m.ChannelID] = next
}

// dropChannel retracts every message belonging to a deleted channel.
func (t *MessageTable) dropChannel(channelID string) *MessageTable {
	keys, ok := t.byChannel[channelID]
	if !ok {
		return t
	}
	next := t.clone()
	for _, k := range keys {
		m := next.byID[k]
		delete(next.byID, k)
		if m.CorrelationID != "" {
			delete(next.byCorrelation, m.CorrelationID)
		}
	}
	delete(next.byChannel, channelID)
	return next
}

func (t *MessageTable) insertOrdered(channelID, key string, m types.Message) {
	keys := t.byChannel[channelID]
	i := sort.Search(len(keys), func(i int) bool {
		other := t.byID[keys[i]]
		if !other.SortKey.Equal(m.SortKey) {
			return other.SortKey.After(m.SortKey)
		}
		return keys[i] > key
	})

	next := make([]string, 0, len(keys)+1)
	next = append(next, keys[:i]...)
	next = append(next, key)
	next = append(next, keys[i:]...)
	t.byChannel[channelID] = next
}

func (t *MessageTable) replaceKey(channelID, oldKey, newKey string) {
	keys := t.byChannel[channelID]
	next := make([]string, len(keys))
	copy(next, keys)
	for i, k := range next {
		if k == oldKey {
			next[i] = newKey
			break
		}
	}
	t.byChannel[channelID] = next
}

func removeReaction(reactions []types.Reaction, emoji, userID string) []types.Reaction {
	out := make([]types.Reaction, 0, len(reactions))
	for _, r := range reactions {
		if r.Emoji != emoji {
			out = append(out, r)
			continue
		}
		users := make([]string, 0, len(r.UserIDs))
		for _, id := range r.UserIDs {
			if id != userID {
				users = append(users, id)
			}
		}
		if len(users) > 0 {
			r.UserIDs = users
			out = append(out, r)
		}
	}
	return out
}
