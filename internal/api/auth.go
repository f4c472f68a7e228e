package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const userIDClaim = "user-id"

// TokenClaims is what the client reads out of its bearer token: the
// authenticated user id, which names the private event channel, and
// the expiry. The server issues and verifies the token; the client
// only inspects the claims.
type TokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

func ParseAccessToken(token string) (TokenClaims, error) {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return TokenClaims{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, fmt.Errorf("invalid token claims")
	}

	userID, _ := claims[userIDClaim].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return TokenClaims{}, fmt.Errorf("missing user id claim")
	}

	tc := TokenClaims{UserID: userID}
	if exp, ok := claims["exp"].(float64); ok {
		tc.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return tc, nil
}
