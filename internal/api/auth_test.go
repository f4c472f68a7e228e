package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestParseAccessToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tcases := []struct {
		name   string
		claims jwt.MapClaims
		userID string
		err    string
	}{
		{
			name:   "user id claim",
			claims: jwt.MapClaims{"user-id": "u1", "exp": float64(exp.Unix())},
			userID: "u1",
		},
		{
			name:   "sub fallback",
			claims: jwt.MapClaims{"sub": "u2"},
			userID: "u2",
		},
		{
			name:   "user id wins over sub",
			claims: jwt.MapClaims{"user-id": "u1", "sub": "u2"},
			userID: "u1",
		},
		{
			name:   "missing user id",
			claims: jwt.MapClaims{"exp": float64(exp.Unix())},
			err:    "missing user id claim",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := ParseAccessToken(signedToken(t, tc.claims))
			if tc.err != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.userID, claims.UserID)
		})
	}
}

func TestParseAccessToken_expiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := ParseAccessToken(signedToken(t, jwt.MapClaims{"user-id": "u1", "exp": float64(exp.Unix())}))
	require.NoError(t, err)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestParseAccessToken_garbage(t *testing.T) {
	_, err := ParseAccessToken("not-a-token")
	assert.Error(t, err)
}
