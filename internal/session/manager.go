package session

import (
	"context"
	"fmt"
	"sync"
)

// Manager hands out the Store instance for a given session ID, creating and
// hydrating it on first use. Concurrent requests from the same browser
// share one Store, which is what makes the store's clear-once guarantee
// hold across simultaneous 401 responses.
type Manager struct {
	backend Backend

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a manager over the given backend.
func NewManager(backend Backend) *Manager {
	return &Manager{
		backend: backend,
		stores:  make(map[string]*Store),
	}
}

// For returns the store for the given session ID. An empty ID yields a
// fresh, uncached, empty store (the anonymous case). The store is hydrated
// from the backend on creation; a missing backend record simply leaves it
// empty.
func (m *Manager) For(ctx context.Context, id string) (*Store, error) {
	if id == "" {
		return NewStore(m.backend), nil
	}

	m.mu.Lock()
	if store, ok := m.stores[id]; ok {
		m.mu.Unlock()
		return store, nil
	}
	m.mu.Unlock()

	// Hydrate before publishing so no caller ever observes a store that is
	// still resolving.
	store := NewStore(m.backend)
	if err := store.Hydrate(ctx, id); err != nil {
		return nil, fmt.Errorf("hydrate session %q: %w", id, err)
	}

	// Once the session empties (logout or 401-clear) the cached store has
	// nothing left to share; drop it so the map doesn't grow unbounded.
	// Registered before the store is published so a clear arriving through a
	// concurrently shared handle is never missed.
	store.Subscribe(func(ev Event) {
		if ev.Session.IsEmpty() {
			m.drop(id)
		}
	})

	m.mu.Lock()
	if existing, ok := m.stores[id]; ok {
		// Another request hydrated the same session concurrently; share it.
		m.mu.Unlock()
		return existing, nil
	}
	m.stores[id] = store
	m.mu.Unlock()

	return store, nil
}

// Invalidate clears the session with the given ID, marking the clear as
// unauthorized (backend 401). It reports whether this call performed the
// transition from non-empty to empty.
func (m *Manager) Invalidate(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	store, err := m.For(ctx, id)
	if err != nil {
		return false, err
	}
	return store.Clear(ctx, true)
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	delete(m.stores, id)
	m.mu.Unlock()
}
