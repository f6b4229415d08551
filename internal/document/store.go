package document

import (
	"context"

	id "permitdesk/pkg/domain"
)

// ReviewUpdate mutates review fields on the current version only. History
// rows are never rewritten.
type ReviewUpdate struct {
	Status Status
	Notes  *string
}

// Store persists document versions.
//
// Implementations must uphold the one-current-per-(application, type)
// invariant structurally: Insert refuses a second current record of the same
// type, and Replace flips the predecessor and inserts the successor
// atomically, failing with sentinel.ErrConflict when the predecessor is no
// longer current.
type Store interface {
	// Insert persists version 1 of a document type. Returns
	// sentinel.ErrDuplicate when a current document of the type already exists.
	Insert(ctx context.Context, doc *Document) error

	// Replace atomically retires the old current version and inserts its
	// successor. Returns sentinel.ErrNotFound when oldID is unknown and
	// sentinel.ErrConflict when oldID is no longer the current version.
	Replace(ctx context.Context, oldID id.DocumentID, successor *Document) error

	// Get returns a single version or sentinel.ErrNotFound.
	Get(ctx context.Context, docID id.DocumentID) (Document, error)

	// UpdateReview records a review decision on a current version. Returns
	// sentinel.ErrNotCurrent when the target has been superseded.
	UpdateReview(ctx context.Context, docID id.DocumentID, upd ReviewUpdate) (Document, error)

	// ListVersions returns all versions of a type, oldest first.
	ListVersions(ctx context.Context, appID id.ApplicationID, t Type) ([]Document, error)

	// ListCurrent returns exactly the current version of every type the
	// application has supplied.
	ListCurrent(ctx context.Context, appID id.ApplicationID) ([]Document, error)
}
