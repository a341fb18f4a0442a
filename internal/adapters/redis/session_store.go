// Package redis provides Redis-based adapters for the marketplace ui-api.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
	"github.com/vendora/marketplace-ui-api/internal/session"
)

// SessionBackend is a Redis-based session backend for production use.
// It handles TTL semantics automatically based on session ExpiresAt.
type SessionBackend struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewSessionBackend creates a new Redis-based session backend. defaultTTL
// is applied when a session carries no expiry of its own.
func NewSessionBackend(client redis.UniversalClient, defaultTTL time.Duration) *SessionBackend {
	return &SessionBackend{
		client:     client,
		prefix:     "session:",
		defaultTTL: defaultTTL,
	}
}

// NewSessionBackendWithPrefix creates a Redis session backend with a custom key prefix.
func NewSessionBackendWithPrefix(client redis.UniversalClient, defaultTTL time.Duration, prefix string) *SessionBackend {
	return &SessionBackend{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

func (s *SessionBackend) Save(ctx context.Context, sess domainsession.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := s.defaultTTL
	if !sess.ExpiresAt.IsZero() {
		ttl = time.Until(sess.ExpiresAt)
		if ttl <= 0 {
			// Session is already expired, don't save it
			return errors.New("session is expired")
		}
	}

	key := s.prefix + sess.ID
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *SessionBackend) Load(ctx context.Context, id string) (domainsession.Session, error) {
	if id == "" {
		return domainsession.Session{}, session.ErrNotFound
	}

	key := s.prefix + id
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainsession.Session{}, session.ErrNotFound
		}
		return domainsession.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainsession.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainsession.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Double-check expiration (Redis TTL should handle this, but be defensive)
	if sess.IsExpired(time.Now()) {
		// Clean up expired session; if cleanup fails bubble the error up.
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainsession.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainsession.Session{}, session.ErrNotFound
	}

	return sess, nil
}

func (s *SessionBackend) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}

	key := s.prefix + id
	return s.client.Del(ctx, key).Err()
}
