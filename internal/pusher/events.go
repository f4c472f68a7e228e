package pusher

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/krel404/shades/internal/store"
	"github.com/krel404/shades/internal/types"
)

// Server event names delivered on the per-user private channel.
const (
	EventMessageCreate         = "MESSAGE_CREATE"
	EventMessageUpdate         = "MESSAGE_UPDATE"
	EventMessageRemove         = "MESSAGE_REMOVE"
	EventMessageReactionAdd    = "MESSAGE_REACTION_ADD"
	EventMessageReactionRemove = "MESSAGE_REACTION_REMOVE"
	EventUserProfileUpdate     = "USER_PROFILE_UPDATE"
	EventUserPresenceUpdate    = "USER_PRESENCE_UPDATE"
	EventUserTyping            = "USER_TYPING"
	EventChannelRead           = "CHANNEL_READ"
	EventChannelUpdate         = "CHANNEL_UPDATE"
	EventChannelUserJoined     = "CHANNEL_USER_JOINED"
	EventChannelUserInvited    = "CHANNEL_USER_INVITED"
)

// Envelope is the wire frame for one pushed event.
type Envelope struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type messageRefPayload struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
}

type reactionPayload struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	UserID    string `json:"user_id"`
}

type presencePayload struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

type typingPayload struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
}

type channelReadPayload struct {
	ChannelID string    `json:"channel_id"`
	At        time.Time `json:"at"`
}

type channelUpdatePayload struct {
	ChannelID string             `json:"channel_id"`
	Patch     types.ChannelPatch `json:"patch"`
}

type memberPayload struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
}

// errUnknownEvent marks event names outside the table; the bridge
// logs and drops them rather than treating them as fatal.
type errUnknownEvent struct {
	name string
}

func (e errUnknownEvent) Error() string {
	return fmt.Sprintf("unknown event %q", e.name)
}

// decodeEvent translates one named server event into its store
// action. The mapping is fixed: each event name has exactly one
// action constructor.
func decodeEvent(env Envelope) (store.Action, error) {
	switch env.Event {
	case EventMessageCreate, EventMessageUpdate:
		var m types.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.MessageReceived{Message: m}, nil
	case EventMessageRemove:
		var p messageRefPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.MessageRemoved{MessageID: p.MessageID}, nil
	case EventMessageReactionAdd:
		var p reactionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.ReactionAdded{MessageID: p.MessageID, Emoji: p.Emoji, UserID: p.UserID}, nil
	case EventMessageReactionRemove:
		var p reactionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.ReactionRemoved{MessageID: p.MessageID, Emoji: p.Emoji, UserID: p.UserID}, nil
	case EventUserProfileUpdate:
		var u types.User
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.UserProfileUpdated{User: u}, nil
	case EventUserPresenceUpdate:
		var p presencePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.UserPresenceUpdated{UserID: p.UserID, Online: p.Online}, nil
	case EventUserTyping:
		var p typingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.TypingStarted{ChannelID: p.ChannelID, UserID: p.UserID}, nil
	case EventChannelRead:
		var p channelReadPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.ChannelMarkedRead{ChannelID: p.ChannelID, At: p.At}, nil
	case EventChannelUpdate:
		var p channelUpdatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.ChannelUpdated{ChannelID: p.ChannelID, Patch: p.Patch}, nil
	case EventChannelUserJoined, EventChannelUserInvited:
		var p memberPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return store.MemberJoined{ChannelID: p.ChannelID, UserID: p.UserID}, nil
	default:
		return nil, errUnknownEvent{name: env.Event}
	}
}
