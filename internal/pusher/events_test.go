package pusher

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krel404/shades/internal/store"
)

func Test_decodeEvent(t *testing.T) {
	tcases := []struct {
		name   string
		env    Envelope
		action store.Action
	}{
		{
			name: "message create",
			env: Envelope{
				Event: EventMessageCreate,
				Data:  json.RawMessage(`{"id":"m1","channel_id":"c1","author_user_id":"u1"}`),
			},
			action: store.MessageReceived{},
		},
		{
			name: "message update",
			env: Envelope{
				Event: EventMessageUpdate,
				Data:  json.RawMessage(`{"id":"m1","channel_id":"c1"}`),
			},
			action: store.MessageReceived{},
		},
		{
			name: "message remove",
			env: Envelope{
				Event: EventMessageRemove,
				Data:  json.RawMessage(`{"message_id":"m1","channel_id":"c1"}`),
			},
			action: store.MessageRemoved{},
		},
		{
			name: "reaction add",
			env: Envelope{
				Event: EventMessageReactionAdd,
				Data:  json.RawMessage(`{"message_id":"m1","emoji":"🔥","user_id":"u1"}`),
			},
			action: store.ReactionAdded{},
		},
		{
			name: "reaction remove",
			env: Envelope{
				Event: EventMessageReactionRemove,
				Data:  json.RawMessage(`{"message_id":"m1","emoji":"🔥","user_id":"u1"}`),
			},
			action: store.ReactionRemoved{},
		},
		{
			name: "profile update",
			env: Envelope{
				Event: EventUserProfileUpdate,
				Data:  json.RawMessage(`{"id":"u1","display_name":"alice"}`),
			},
			action: store.UserProfileUpdated{},
		},
		{
			name: "presence update",
			env: Envelope{
				Event: EventUserPresenceUpdate,
				Data:  json.RawMessage(`{"user_id":"u1","online":true}`),
			},
			action: store.UserPresenceUpdated{},
		},
		{
			name: "typing",
			env: Envelope{
				Event: EventUserTyping,
				Data:  json.RawMessage(`{"channel_id":"c1","user_id":"u1"}`),
			},
			action: store.TypingStarted{},
		},
		{
			name: "channel read",
			env: Envelope{
				Event: EventChannelRead,
				Data:  json.RawMessage(`{"channel_id":"c1","at":"2024-05-01T12:00:00Z"}`),
			},
			action: store.ChannelMarkedRead{},
		},
		{
			name: "channel update",
			env: Envelope{
				Event: EventChannelUpdate,
				Data:  json.RawMessage(`{"channel_id":"c1","patch":{"name":"renamed"}}`),
			},
			action: store.ChannelUpdated{},
		},
		{
			name: "member joined",
			env: Envelope{
				Event: EventChannelUserJoined,
				Data:  json.RawMessage(`{"channel_id":"c1","user_id":"u2"}`),
			},
			action: store.MemberJoined{},
		},
		{
			name: "member invited",
			env: Envelope{
				Event: EventChannelUserInvited,
				Data:  json.RawMessage(`{"channel_id":"c1","user_id":"u2"}`),
			},
			action: store.MemberJoined{},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			action, err := decodeEvent(tc.env)
			require.NoError(t, err)
			assert.IsType(t, tc.action, action)
		})
	}
}

func Test_decodeEvent_payloads(t *testing.T) {
	action, err := decodeEvent(Envelope{
		Event: EventMessageCreate,
		Data:  json.RawMessage(`{"id":"m1","channel_id":"c1","author_user_id":"u1"}`),
	})
	require.NoError(t, err)

	received, ok := action.(store.MessageReceived)
	require.True(t, ok)
	assert.Equal(t, "m1", received.Message.ID)
	assert.Equal(t, "c1", received.Message.ChannelID)
	assert.Equal(t, "u1", received.Message.AuthorUserID)
}

func Test_decodeEvent_unknown(t *testing.T) {
	_, err := decodeEvent(Envelope{Event: "SOMETHING_NEW"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown event")
}

func Test_decodeEvent_malformedData(t *testing.T) {
	_, err := decodeEvent(Envelope{
		Event: EventMessageReactionAdd,
		Data:  json.RawMessage(`not json`),
	})
	assert.Error(t, err)
}
