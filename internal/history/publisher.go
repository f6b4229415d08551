package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"permitdesk/internal/application"
	id "permitdesk/pkg/domain"
)

// Publisher stamps and records status changes. It is fail-closed: if the
// entry cannot be written the caller must abort the transition, so the log
// never has gaps.
type Publisher struct {
	store Store
	now   func() time.Time
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store, now: time.Now}
}

// Record appends one status-change entry, stamping ID and CreatedAt.
func (p *Publisher) Record(ctx context.Context, appID id.ApplicationID, from *application.Status, to application.Status, actor id.ActorID, notes string) error {
	entry := Entry{
		ID:            uuid.New(),
		ApplicationID: appID,
		StatusFrom:    from,
		StatusTo:      to,
		ChangedBy:     actor,
		Notes:         notes,
		CreatedAt:     p.now().UTC(),
	}
	if err := p.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

// List returns the full trail for an application, oldest first.
func (p *Publisher) List(ctx context.Context, appID id.ApplicationID) ([]Entry, error) {
	return p.store.List(ctx, appID)
}
