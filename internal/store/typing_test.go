package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krel404/shades/internal/types"
)

func Test_TypingTable_startAndEnd(t *testing.T) {
	expiry := time.Now().Add(6 * time.Second)

	tbl := newTypingTable().
		reduce(TypingStarted{ChannelID: "c1", UserID: "u1", ExpiresAt: expiry}).
		reduce(TypingStarted{ChannelID: "c1", UserID: "u2", ExpiresAt: expiry})

	assert.True(t, tbl.IsTyping("c1", "u1"))
	assert.ElementsMatch(t, []string{"u1", "u2"}, tbl.TypingUserIDs("c1"))

	tbl = tbl.reduce(TypingEnded{ChannelID: "c1", UserID: "u1"})
	assert.False(t, tbl.IsTyping("c1", "u1"))
	assert.True(t, tbl.IsTyping("c1", "u2"))
}

func Test_TypingTable_endWithoutStartIsNoop(t *testing.T) {
	tbl := newTypingTable()
	assert.Same(t, tbl, tbl.reduce(TypingEnded{ChannelID: "c1", UserID: "u1"}))
}

func Test_TypingTable_messageEndsAuthorTyping(t *testing.T) {
	tbl := newTypingTable().
		reduce(TypingStarted{ChannelID: "c1", UserID: "u1", ExpiresAt: time.Now().Add(6 * time.Second)})

	tbl = tbl.reduce(MessageReceived{Message: types.Message{
		ID:           "m1",
		ChannelID:    "c1",
		AuthorUserID: "u1",
	}})
	assert.False(t, tbl.IsTyping("c1", "u1"))

	// a message from someone not typing changes nothing
	assert.Same(t, tbl, tbl.reduce(MessageReceived{Message: types.Message{
		ID:           "m2",
		ChannelID:    "c1",
		AuthorUserID: "u2",
	}}))
}

func Test_TypingTable_dropChannel(t *testing.T) {
	expiry := time.Now().Add(6 * time.Second)

	tbl := newTypingTable().
		reduce(TypingStarted{ChannelID: "c1", UserID: "u1", ExpiresAt: expiry}).
		reduce(TypingStarted{ChannelID: "c2", UserID: "u1", ExpiresAt: expiry})

	tbl = tbl.dropChannel("c1")
	assert.Empty(t, tbl.TypingUserIDs("c1"))
	assert.True(t, tbl.IsTyping("c2", "u1"))

	assert.Same(t, tbl, tbl.dropChannel("c1"))
}
