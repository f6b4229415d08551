package application

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	id "permitdesk/pkg/domain"
	"permitdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in a map. It is the default wiring for
// tests and local development.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]Application
	refs map[string]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		apps: make(map[id.ApplicationID]Application),
		refs: make(map[string]bool),
	}
}

func (s *InMemoryStore) Create(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs[app.ReferenceNumber] {
		return sentinel.ErrDuplicate
	}
	if _, ok := s.apps[app.ID]; ok {
		return sentinel.ErrDuplicate
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	s.apps[app.ID] = *app
	s.refs[app.ReferenceNumber] = true
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, appID id.ApplicationID) (Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appID]
	if !ok {
		return Application{}, sentinel.ErrNotFound
	}
	return app, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, appID id.ApplicationID, upd StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if app.Status != upd.From {
		return sentinel.ErrConflict
	}
	app.Status = upd.To
	app.RejectionReason = upd.RejectionReason
	app.UpdatedAt = time.Now()
	s.apps[appID] = app
	return nil
}

func (s *InMemoryStore) SetAssessedFee(_ context.Context, appID id.ApplicationID, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	app.AssessedFee = &amount
	app.UpdatedAt = time.Now()
	s.apps[appID] = app
	return nil
}
