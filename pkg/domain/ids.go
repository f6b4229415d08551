// Package domain holds shared domain primitives: typed identifiers constructed
// at trust boundaries so handlers cannot pass raw strings into services.
package domain

import (
	"github.com/google/uuid"

	dErrors "permitdesk/pkg/domain-errors"
)

// ApplicationID identifies a permit application.
type ApplicationID uuid.UUID

// NewApplicationID issues a fresh application identifier.
func NewApplicationID() ApplicationID {
	return ApplicationID(uuid.New())
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid application id")
	}
	return ApplicationID(u), nil
}

func (a ApplicationID) String() string {
	return uuid.UUID(a).String()
}

// IsNil reports whether the identifier is the zero value.
func (a ApplicationID) IsNil() bool {
	return uuid.UUID(a) == uuid.Nil
}

// MarshalText renders the id in canonical UUID form for JSON and logs.
func (a ApplicationID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ApplicationID) UnmarshalText(b []byte) error {
	parsed, err := ParseApplicationID(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DocumentID identifies one version of an uploaded document.
type DocumentID uuid.UUID

// NewDocumentID issues a fresh document identifier.
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New())
}

// ParseDocumentID constructs a DocumentID from external input.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DocumentID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid document id")
	}
	return DocumentID(u), nil
}

func (d DocumentID) String() string {
	return uuid.UUID(d).String()
}

func (d DocumentID) IsNil() bool {
	return uuid.UUID(d) == uuid.Nil
}

// MarshalText renders the id in canonical UUID form for JSON and logs.
func (d DocumentID) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DocumentID) UnmarshalText(b []byte) error {
	parsed, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ActorID identifies who performed a change. The zero value means the change
// was made by the system itself (e.g. auto-reopen on resubmission).
type ActorID string

// SystemActor marks system-initiated transitions in the history log.
const SystemActor ActorID = ""

func (a ActorID) String() string {
	return string(a)
}

// IsSystem reports whether the actor is the system itself.
func (a ActorID) IsSystem() bool {
	return a == SystemActor
}
