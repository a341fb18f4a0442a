package session

import (
	"context"
	"sync"
	"time"

	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
)

// MemoryBackend is an in-process session backend suitable for tests and
// single-instance development runs.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]domainsession.Session
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]domainsession.Session)}
}

func (m *MemoryBackend) Load(_ context.Context, id string) (domainsession.Session, error) {
	if id == "" {
		return domainsession.Session{}, ErrNotFound
	}

	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return domainsession.Session{}, ErrNotFound
	}

	if sess.IsExpired(time.Now()) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return domainsession.Session{}, ErrNotFound
	}

	return sess, nil
}

func (m *MemoryBackend) Save(_ context.Context, sess domainsession.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
