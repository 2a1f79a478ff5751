package memory

import (
	"context"
	"sync"

	audit "onboard/pkg/platform/audit"
)

// Store keeps audit events in memory. Suitable for single-instance
// deployments and tests; production should use the postgres store.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

// New creates an empty in-memory audit store.
func New() *Store {
	return &Store{}
}

// Append records an event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *Store) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events...)
}
