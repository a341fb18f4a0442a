// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"encoding/json"
)

// Credentials carries a login attempt's inputs. They are forwarded to the
// backend verbatim; the gateway never validates passwords itself.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenGrant is the credential material the backend issues on a successful
// login or refresh. Profile is the identity-bearing payload cached into the
// session for resolution.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	Profile      json.RawMessage
}

// BackendAuthenticator performs credential flows against the marketplace
// backend service.
type BackendAuthenticator interface {
	// Login exchanges credentials for a token grant.
	Login(ctx context.Context, creds Credentials) (TokenGrant, error)

	// Refresh exchanges a refresh token for a new grant. The backend may
	// rotate the refresh token; the returned grant is authoritative.
	Refresh(ctx context.Context, refreshToken string) (TokenGrant, error)

	// Logout notifies the backend that the token is being abandoned.
	// Best-effort; the local session clear does not depend on it.
	Logout(ctx context.Context, accessToken string) error
}
