package history

import (
	"context"
	"sync"

	id "permitdesk/pkg/domain"
)

// InMemoryStore keeps history entries per application. Used in tests and when
// the service runs without postgres.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.ApplicationID][]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.ApplicationID][]Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ApplicationID] = append(s.entries[entry.ApplicationID], entry)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, appID id.ApplicationID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries[appID]))
	copy(out, s.entries[appID])
	return out, nil
}
