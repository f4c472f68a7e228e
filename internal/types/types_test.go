package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Key(t *testing.T) {
	assert.Equal(t, "m1", Message{ID: "m1", TempID: "tmp-1"}.Key(), "server id wins once assigned")
	assert.Equal(t, "tmp-1", Message{TempID: "tmp-1"}.Key())
}

func TestUser_Name(t *testing.T) {
	assert.Equal(t, "alice", User{DisplayName: "alice", WalletAddress: "0xabc"}.Name())
	assert.Equal(t, "0xd8dA…6045",
		User{WalletAddress: "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"}.Name())
}
