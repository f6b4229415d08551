package application

import (
	"context"

	"github.com/shopspring/decimal"

	id "permitdesk/pkg/domain"
)

// StatusUpdate is a compare-and-set transition. From is the status the caller
// observed; the store rejects the write with sentinel.ErrConflict when another
// writer got there first, which keeps transitions serialized per application.
type StatusUpdate struct {
	From            Status
	To              Status
	RejectionReason *string
}

// Store is interface-driven to keep the domain logic testable and to allow
// swapping in-memory and postgres persistence without rewiring business code.
type Store interface {
	// Create persists a new application. Returns sentinel.ErrDuplicate when
	// the reference number is already taken.
	Create(ctx context.Context, app *Application) error

	// Get returns the application or sentinel.ErrNotFound.
	Get(ctx context.Context, appID id.ApplicationID) (Application, error)

	// UpdateStatus applies a compare-and-set status transition. The rejection
	// reason is always overwritten with the update's value so reopen clears it.
	UpdateStatus(ctx context.Context, appID id.ApplicationID, upd StatusUpdate) error

	// SetAssessedFee records the computed fee on the application.
	SetAssessedFee(ctx context.Context, appID id.ApplicationID, amount decimal.Decimal) error
}
