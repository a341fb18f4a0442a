package httpx

import (
	"context"

	domainidentity "github.com/vendora/marketplace-ui-api/internal/domain/identity"
	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

type identityKey struct{}

// SetSessionInContext returns a child context that carries the given session.
func SetSessionInContext(ctx context.Context, sess domainsession.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// GetSessionFromContext returns the session from context and a boolean indicating presence.
func GetSessionFromContext(ctx context.Context) (domainsession.Session, bool) {
	if sess, ok := ctx.Value(sessionKey{}).(domainsession.Session); ok {
		return sess, true
	}
	return domainsession.Session{}, false
}

// SetIdentityInContext returns a child context carrying the resolved identity.
func SetIdentityInContext(ctx context.Context, id domainidentity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentityFromContext returns the resolved identity for the request.
// Absence resolves to Anonymous, never to a privileged default.
func GetIdentityFromContext(ctx context.Context) domainidentity.Identity {
	if id, ok := ctx.Value(identityKey{}).(domainidentity.Identity); ok {
		return id
	}
	return domainidentity.Anonymous()
}
