// Package history keeps the append-only status trail of an application.
// Entries are never updated or deleted; the log is the audit record reviewers
// and applicants both rely on.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"permitdesk/internal/application"
	id "permitdesk/pkg/domain"
)

// Entry is one status change. StatusFrom is nil only for the creation entry.
type Entry struct {
	ID            uuid.UUID           `json:"id"`
	ApplicationID id.ApplicationID    `json:"application_id"`
	StatusFrom    *application.Status `json:"status_from,omitempty"`
	StatusTo      application.Status  `json:"status_to"`
	ChangedBy     id.ActorID          `json:"changed_by"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Store persists history entries.
type Store interface {
	// Append writes one entry. Append-only: there is no update or delete.
	Append(ctx context.Context, entry Entry) error

	// List returns the entries for an application in chronological order.
	List(ctx context.Context, appID id.ApplicationID) ([]Entry, error)
}
