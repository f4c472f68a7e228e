package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krel404/shades/internal/types"
)

func Test_UserTable_walletLookupCaseInsensitive(t *testing.T) {
	tbl := newUserTable().reduce(UsersFetched{Users: []types.User{
		{ID: "u1", WalletAddress: "0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045", DisplayName: "vitalik"},
	}})

	u, ok := tbl.UserByWallet("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)

	u, ok = tbl.UserByWallet("D8DA6BF26964AF9D7EED9E03E53415D37AA96045")
	require.True(t, ok, "lookup tolerates missing 0x prefix and any casing")
	assert.Equal(t, "u1", u.ID)

	_, ok = tbl.UserByWallet("0x0000000000000000000000000000000000000000")
	assert.False(t, ok)
}

func Test_UserTable_profileMergeKeepsPresence(t *testing.T) {
	tbl := newUserTable().
		reduce(UsersFetched{Users: []types.User{{ID: "u1", DisplayName: "alice"}}}).
		reduce(UserPresenceUpdated{UserID: "u1", Online: true})

	u, _ := tbl.User("u1")
	require.True(t, u.Online)

	// a profile refresh that says nothing about presence must not
	// knock the user offline
	tbl = tbl.reduce(UserProfileUpdated{User: types.User{ID: "u1", DisplayName: "alice (updated)"}})

	u, _ = tbl.User("u1")
	assert.True(t, u.Online)
	assert.Equal(t, "alice (updated)", u.DisplayName)
}

func Test_UserTable_presenceNoops(t *testing.T) {
	tbl := newUserTable().reduce(UsersFetched{Users: []types.User{{ID: "u1"}}})

	assert.Same(t, tbl, tbl.reduce(UserPresenceUpdated{UserID: "missing", Online: true}))
	assert.Same(t, tbl, tbl.reduce(UserPresenceUpdated{UserID: "u1", Online: false}), "presence already matches")

	next := tbl.reduce(UserPresenceUpdated{UserID: "u1", Online: true})
	u, _ := next.User("u1")
	assert.True(t, u.Online)
}

func Test_UserTable_loggedIn(t *testing.T) {
	tbl := newUserTable().reduce(LoggedIn{User: types.User{ID: "u1", WalletAddress: "0xAbC123"}})

	u, ok := tbl.User("u1")
	require.True(t, ok)
	assert.Equal(t, "0xabc123", u.WalletAddress, "wallet address normalizes on ingest")
}
