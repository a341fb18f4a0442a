package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
	"github.com/vendora/marketplace-ui-api/internal/ports"
	"github.com/vendora/marketplace-ui-api/internal/session"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend  ports.BackendAuthenticator
	Sessions *session.Manager
	// DefaultTTL bounds sessions whose access token carries no expiry claim.
	DefaultTTL time.Duration
}

// AuthService orchestrates credential flows: it exchanges credentials with
// the backend, derives session lifetime, and drives the session store's
// defined mutations (login write, refresh replace, logout clear).
type AuthService struct {
	backend    ports.BackendAuthenticator
	sessions   *session.Manager
	defaultTTL time.Duration

	// refreshGroup collapses concurrent refresh attempts for one session
	// into a single backend call; every waiter receives the same
	// replacement session.
	refreshGroup singleflight.Group
}

var (
	errNoActiveSession = errors.New("no active session")
	errNoRefreshToken  = errors.New("no refresh token in session")
)

const defaultSessionTTL = 12 * time.Hour

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		backend:    opts.Backend,
		sessions:   opts.Sessions,
		defaultTTL: ttl,
	}
}

// Login exchanges credentials with the backend and writes the resulting
// session into the store under a fresh session ID.
func (s *AuthService) Login(ctx context.Context, creds ports.Credentials) (domainsession.Session, error) {
	if creds.Email == "" {
		return domainsession.Session{}, errors.New("email is required")
	}
	if creds.Password == "" {
		return domainsession.Session{}, errors.New("password is required")
	}

	grant, err := s.backend.Login(ctx, creds)
	if err != nil {
		return domainsession.Session{}, fmt.Errorf("backend login: %w", err)
	}

	sess := s.sessionFromGrant(grant, uuid.New().String())
	store, err := s.sessions.For(ctx, "")
	if err != nil {
		return domainsession.Session{}, fmt.Errorf("open session store: %w", err)
	}
	if err := store.Write(ctx, sess); err != nil {
		return domainsession.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Refresh replaces the session's access token using its refresh token.
// Concurrent callers for the same session share one backend round trip.
func (s *AuthService) Refresh(ctx context.Context, sessionID string) (domainsession.Session, error) {
	store, err := s.sessions.For(ctx, sessionID)
	if err != nil {
		return domainsession.Session{}, fmt.Errorf("open session store: %w", err)
	}

	current := store.Read()
	if current.IsEmpty() {
		return domainsession.Session{}, errNoActiveSession
	}
	if current.RefreshToken == "" {
		return domainsession.Session{}, errNoRefreshToken
	}

	result, err, _ := s.refreshGroup.Do(sessionID, func() (any, error) {
		grant, refreshErr := s.backend.Refresh(ctx, current.RefreshToken)
		if refreshErr != nil {
			return nil, fmt.Errorf("backend refresh: %w", refreshErr)
		}

		sess := s.sessionFromGrant(grant, current.ID)
		if sess.Profile == nil {
			// Refresh responses may omit the profile; keep the cached one.
			sess.Profile = current.Profile
		}
		if writeErr := store.Write(ctx, sess); writeErr != nil {
			return nil, fmt.Errorf("store session: %w", writeErr)
		}
		return sess, nil
	})
	if err != nil {
		return domainsession.Session{}, err
	}

	sess, ok := result.(domainsession.Session)
	if !ok {
		return domainsession.Session{}, errors.New("unexpected refresh result type")
	}
	return sess, nil
}

// Logout clears the session store and notifies the backend best-effort.
// The clear commutes with a concurrent 401-driven clear; whichever runs
// first wins and the other is a safe no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to log out
	}

	store, err := s.sessions.For(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	current := store.Read()
	if _, err := store.Clear(ctx, false); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	if current.IsEmpty() {
		return nil
	}
	// Local state is already cleared; backend notification failure is not
	// a logout failure.
	_ = s.backend.Logout(ctx, current.AccessToken)
	return nil
}

func (s *AuthService) sessionFromGrant(grant ports.TokenGrant, id string) domainsession.Session {
	expiresAt := session.TokenExpiry(grant.AccessToken)
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.defaultTTL)
	}
	return domainsession.Session{
		ID:           id,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		Profile:      grant.Profile,
		ExpiresAt:    expiresAt,
	}
}
