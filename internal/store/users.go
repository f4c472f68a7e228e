package store

import (
	"maps"

	"github.com/krel404/shades/internal/types"
)

// UserTable keys users by id and keeps a reverse index from the
// canonical lowercase wallet address.
type UserTable struct {
	byID     map[string]types.User
	byWallet map[string]string
}

func newUserTable() *UserTable {
	return &UserTable{
		byID:     map[string]types.User{},
		byWallet: map[string]string{},
	}
}

func (t *UserTable) clone() *UserTable {
	return &UserTable{
		byID:     maps.Clone(t.byID),
		byWallet: maps.Clone(t.byWallet),
	}
}

func (t *UserTable) User(id string) (types.User, bool) {
	u, ok := t.byID[id]
	return u, ok
}

// UserByWallet looks a user up by wallet address, case-insensitively.
func (t *UserTable) UserByWallet(addr string) (types.User, bool) {
	id, ok := t.byWallet[types.NormalizeAddress(addr)]
	if !ok {
		return types.User{}, false
	}
	return t.byID[id], true
}

func (t *UserTable) Len() int { return len(t.byID) }

func (t *UserTable) reduce(action Action) *UserTable {
	switch a := action.(type) {
	case LoggedIn:
		next := t.clone()
		next.upsert(a.User)
		return next
	case UsersFetched:
		next := t.clone()
		for _, u := range a.Users {
			next.upsert(u)
		}
		return next
	case UserProfileUpdated:
		next := t.clone()
		next.upsert(a.User)
		return next
	case UserPresenceUpdated:
		u, ok := t.byID[a.UserID]
		if !ok || u.Online == a.Online {
			return t
		}
		next := t.clone()
		u.Online = a.Online
		next.byID[a.UserID] = u
		return next
	default:
		return t
	}
}

func (t *UserTable) upsert(incoming types.User) {
	incoming.WalletAddress = types.NormalizeAddress(incoming.WalletAddress)
	var existing *types.User
	if u, ok := t.byID[incoming.ID]; ok {
		existing = &u
	}
	merged := mergeUsers(existing, incoming)
	t.byID[merged.ID] = merged
	if merged.WalletAddress != "" {
		t.byWallet[merged.WalletAddress] = merged.ID
	}
}
