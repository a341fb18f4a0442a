// Package session implements the session store: a notifying front over a
// pluggable persistence backend. The store is the only writer of credential
// material; the access guard and the proxy gateway share one instance.
package session

import (
	"context"
	"fmt"
	"sync"

	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
)

// Backend persists and retrieves the session record. Implementations live
// in this package (memory) and in the redis adapter.
type Backend interface {
	Load(ctx context.Context, id string) (domainsession.Session, error)
	Save(ctx context.Context, sess domainsession.Session) error
	Delete(ctx context.Context, id string) error
}

// Event describes a store mutation delivered to subscribers.
type Event struct {
	// Unauthorized is true when the mutation was a clear triggered by a
	// backend 401, as opposed to an ordinary write or logout.
	Unauthorized bool
	// Session is the state after the mutation (empty after a clear).
	Session domainsession.Session
}

// Store holds the current session for one browser and notifies subscribers
// on every mutation. Reads are served from the in-process copy and never
// block on the backend; Write and Clear replace the whole record atomically.
type Store struct {
	backend Backend

	mu      sync.Mutex
	current domainsession.Session
	nextSub int
	subs    map[int]func(Event)
}

// NewStore creates a store over the given backend with an empty session.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		subs:    make(map[int]func(Event)),
	}
}

// Hydrate loads the session with the given ID from the backend into the
// store. A missing record leaves the store empty and is not an error.
func (s *Store) Hydrate(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	sess, err := s.backend.Load(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return nil
}

// Read returns the current, possibly-empty session.
func (s *Store) Read() domainsession.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Write atomically replaces the stored session and persists it, then
// notifies subscribers.
func (s *Store) Write(ctx context.Context, sess domainsession.Session) error {
	if err := s.backend.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.current = sess
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs, Event{Session: sess})
	return nil
}

// Clear atomically removes all session fields. Clearing an already-empty
// session is a no-op, not an error; the returned bool reports whether a
// non-empty session actually transitioned to empty. When unauthorized is
// true and a transition happened, subscribers receive the unauthorized
// signal — concurrent 401 handlers therefore broadcast at most once, since
// only the first caller observes the transition.
func (s *Store) Clear(ctx context.Context, unauthorized bool) (bool, error) {
	s.mu.Lock()
	if s.current.IsEmpty() {
		s.mu.Unlock()
		return false, nil
	}
	id := s.current.ID
	s.current = domainsession.Session{}
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, id); err != nil {
		// The in-process state is already cleared; surface the backend
		// failure so callers can log it, but the clear itself stands.
		notify(subs, Event{Unauthorized: unauthorized})
		return true, fmt.Errorf("delete session: %w", err)
	}

	notify(subs, Event{Unauthorized: unauthorized})
	return true, nil
}

// Subscribe registers a callback fired on every Write/Clear. The returned
// cancel func removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// snapshotSubsLocked copies subscribers so callbacks run outside the lock.
func (s *Store) snapshotSubsLocked() []func(Event) {
	out := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}

// ErrNotFound is returned by backends when a session is not found.
type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

var ErrNotFound error = notFoundError{}
