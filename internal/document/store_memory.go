package document

import (
	"context"
	"sort"
	"sync"
	"time"

	id "permitdesk/pkg/domain"
	"permitdesk/pkg/platform/sentinel"
)

type typeKey struct {
	app id.ApplicationID
	typ Type
}

// InMemoryStore models the version log as an append-only slice per
// (application, type) with a current pointer, so the one-current invariant is
// structural rather than a convention spread across rows.
type InMemoryStore struct {
	mu       sync.RWMutex
	versions map[typeKey][]Document
	current  map[typeKey]id.DocumentID
	byID     map[id.DocumentID]typeKey
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		versions: make(map[typeKey][]Document),
		current:  make(map[typeKey]id.DocumentID),
		byID:     make(map[id.DocumentID]typeKey),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := typeKey{app: doc.ApplicationID, typ: doc.Type}
	if _, exists := s.current[key]; exists {
		return sentinel.ErrDuplicate
	}

	doc.Version = 1
	doc.IsCurrent = true
	doc.Status = StatusPending
	doc.CreatedAt = time.Now()

	s.versions[key] = append(s.versions[key], *doc)
	s.current[key] = doc.ID
	s.byID[doc.ID] = key
	return nil
}

func (s *InMemoryStore) Replace(_ context.Context, oldID id.DocumentID, successor *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[oldID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if s.current[key] != oldID {
		return sentinel.ErrConflict
	}

	chain := s.versions[key]
	oldIdx := len(chain) - 1

	successor.ApplicationID = key.app
	successor.Type = key.typ
	successor.Version = chain[oldIdx].Version + 1
	successor.IsCurrent = true
	successor.Status = StatusPending
	successor.CreatedAt = time.Now()

	// Single critical section: flip the predecessor and append the successor
	// together so no observer sees zero or two current versions.
	chain[oldIdx].IsCurrent = false
	s.versions[key] = append(chain, *successor)
	s.current[key] = successor.ID
	s.byID[successor.ID] = key
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, docID id.DocumentID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.find(docID)
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	return doc, nil
}

func (s *InMemoryStore) UpdateReview(_ context.Context, docID id.DocumentID, upd ReviewUpdate) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.byID[docID]
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	if s.current[key] != docID {
		return Document{}, sentinel.ErrNotCurrent
	}

	chain := s.versions[key]
	idx := len(chain) - 1
	now := time.Now()
	chain[idx].Status = upd.Status
	chain[idx].ReviewedAt = &now
	chain[idx].ReviewerNotes = upd.Notes
	return chain[idx], nil
}

func (s *InMemoryStore) ListVersions(_ context.Context, appID id.ApplicationID, t Type) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := s.versions[typeKey{app: appID, typ: t}]
	out := append([]Document{}, chain...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *InMemoryStore) ListCurrent(_ context.Context, appID id.ApplicationID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for key, docID := range s.current {
		if key.app != appID {
			continue
		}
		if doc, ok := s.find(docID); ok {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// find looks a version up by id. Caller must hold the lock.
func (s *InMemoryStore) find(docID id.DocumentID) (Document, bool) {
	key, ok := s.byID[docID]
	if !ok {
		return Document{}, false
	}
	for _, doc := range s.versions[key] {
		if doc.ID == docID {
			return doc, true
		}
	}
	return Document{}, false
}
