package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the exp claim from an access token without verifying
// its signature. The backend is the authority on token validity (it answers
// with 401 when a token is stale); the claim here only sizes the local
// session TTL. Opaque or malformed tokens yield a zero time, which callers
// map to the configured default TTL.
func TokenExpiry(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
