package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
	"github.com/vendora/marketplace-ui-api/internal/session"
	"github.com/vendora/marketplace-ui-api/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionBackend_SaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	sess := domainsession.Session{
		ID:           "test-session-1",
		AccessToken:  "access-abc",
		RefreshToken: "refresh-def",
		Profile:      json.RawMessage(`{"user":{"userType":"seller"}}`),
		ExpiresAt:    time.Now().Add(30 * time.Minute),
	}

	err := backend.Save(ctx, sess)
	require.NoError(t, err)

	retrieved, err := backend.Load(ctx, "test-session-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, retrieved.ID)
	assert.Equal(t, sess.AccessToken, retrieved.AccessToken)
	assert.Equal(t, sess.RefreshToken, retrieved.RefreshToken)
	assert.JSONEq(t, string(sess.Profile), string(retrieved.Profile))
	assert.WithinDuration(t, sess.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestSessionBackend_LoadNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	_, err := backend.Load(ctx, "non-existent")
	assert.Equal(t, session.ErrNotFound, err)
}

func TestSessionBackend_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	sess := domainsession.Session{
		ID:          "test-session-delete",
		AccessToken: "access-abc",
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}

	err := backend.Save(ctx, sess)
	require.NoError(t, err)

	_, err = backend.Load(ctx, "test-session-delete")
	require.NoError(t, err)

	err = backend.Delete(ctx, "test-session-delete")
	require.NoError(t, err)

	_, err = backend.Load(ctx, "test-session-delete")
	assert.Equal(t, session.ErrNotFound, err)
}

func TestSessionBackend_TTLExpiration(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	sess := domainsession.Session{
		ID:          "test-session-ttl",
		AccessToken: "access-abc",
		ExpiresAt:   time.Now().Add(100 * time.Millisecond),
	}

	err := backend.Save(ctx, sess)
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)

	_, err = backend.Load(ctx, "test-session-ttl")
	assert.Equal(t, session.ErrNotFound, err)
}

func TestSessionBackend_DefaultTTLWhenNoExpiry(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	// Opaque tokens produce sessions without an expiry; the backend falls
	// back to the configured default TTL.
	sess := domainsession.Session{
		ID:          "test-session-no-expiry",
		AccessToken: "opaque-token",
	}

	err := backend.Save(ctx, sess)
	require.NoError(t, err)

	ttl := client.TTL(ctx, "session:test-session-no-expiry").Val()
	assert.Greater(t, ttl, 55*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestSessionBackend_CustomPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackendWithPrefix(client, time.Hour, "test-prefix:")
	ctx := context.Background()

	sess := domainsession.Session{
		ID:          "prefix-test",
		AccessToken: "access-abc",
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}

	err := backend.Save(ctx, sess)
	require.NoError(t, err)

	exists := client.Exists(ctx, "test-prefix:prefix-test").Val()
	assert.Equal(t, int64(1), exists)

	retrieved, err := backend.Load(ctx, "prefix-test")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, retrieved.ID)
}

func TestSessionBackend_SaveEmptyID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	sess := domainsession.Session{
		ID:          "",
		AccessToken: "access-abc",
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}

	err := backend.Save(ctx, sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")
}

func TestSessionBackend_SaveExpiredSession(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	sess := domainsession.Session{
		ID:          "expired-session",
		AccessToken: "access-abc",
		ExpiresAt:   time.Now().Add(-1 * time.Hour),
	}

	err := backend.Save(ctx, sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session is expired")
}

func TestSessionBackend_LoadEmptyID(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	backend := NewSessionBackend(client, time.Hour)
	ctx := context.Background()

	_, err := backend.Load(ctx, "")
	assert.Equal(t, session.ErrNotFound, err)
}
