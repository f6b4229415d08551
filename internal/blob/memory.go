package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"permitdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps objects in process memory. Used in tests and when the
// service runs without S3.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[Ref][]byte

	// FailPuts makes every Put return an error. Tests use it to exercise the
	// upload failure path.
	FailPuts bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[Ref][]byte)}
}

func (s *InMemoryStore) Put(_ context.Context, key string, _ string, _ int64, body io.Reader) (Ref, error) {
	if s.FailPuts {
		return "", fmt.Errorf("put %q: %w", key, sentinel.ErrUnavailable)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body for %q: %w", key, err)
	}
	ref := Ref(key)
	s.mu.Lock()
	s.objects[ref] = data
	s.mu.Unlock()
	return ref, nil
}

func (s *InMemoryStore) Get(_ context.Context, ref Ref) (io.ReadCloser, error) {
	s.mu.RLock()
	data, ok := s.objects[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *InMemoryStore) Delete(_ context.Context, ref Ref) error {
	s.mu.Lock()
	delete(s.objects, ref)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored objects.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
