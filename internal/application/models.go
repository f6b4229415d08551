package application

import (
	"time"

	"github.com/shopspring/decimal"

	id "permitdesk/pkg/domain"
	dErrors "permitdesk/pkg/domain-errors"
)

// ApplicantType classifies who is applying. It drives the required document
// set together with the representative and subdivision flags.
type ApplicantType string

const (
	ApplicantIndividual ApplicantType = "individual"
	ApplicantCompany    ApplicantType = "company"
	ApplicantDeveloper  ApplicantType = "developer"
	ApplicantGovernment ApplicantType = "government"
)

// validApplicantTypes is the single source of truth for applicant types.
var validApplicantTypes = map[ApplicantType]bool{
	ApplicantIndividual: true,
	ApplicantCompany:    true,
	ApplicantDeveloper:  true,
	ApplicantGovernment: true,
}

// ParseApplicantType constructs an ApplicantType from external input.
func ParseApplicantType(s string) (ApplicantType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "applicant type cannot be empty")
	}
	t := ApplicantType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid applicant type: "+s)
	}
	return t, nil
}

// IsValid checks if the applicant type is one of the supported enum values.
func (t ApplicantType) IsValid() bool {
	return validApplicantTypes[t]
}

func (t ApplicantType) String() string {
	return string(t)
}

// Status is the authoritative review state of an application. It is advanced
// only through the guarded transitions in the service; the compliance signal
// is a derived read model and never feeds back into this field directly.
type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusInReview: true,
	StatusApproved: true,
	StatusRejected: true,
}

// legalTransitions encodes the status machine edges. Approved is terminal;
// rejected supports reopen so the document-replace flow can resume review.
var legalTransitions = map[Status][]Status{
	StatusPending:  {StatusInReview},
	StatusInReview: {StatusApproved, StatusRejected},
	StatusRejected: {StatusInReview},
	StatusApproved: {},
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status: "+s)
	}
	return st, nil
}

// CanTransitionTo reports whether the edge from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range legalTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Profile is the applicant profile that determines the required document set.
type Profile struct {
	ApplicantType    ApplicantType `json:"applicant_type"`
	IsRepresentative bool          `json:"is_representative"`
	IsSubdivision    bool          `json:"is_subdivision"`
}

// Application is a permit-style application under review.
//
// Invariant: RejectionReason is non-nil if and only if Status is rejected.
type Application struct {
	ID              id.ApplicationID `json:"id"`
	ReferenceNumber string           `json:"reference_number"`
	Profile         Profile          `json:"profile"`

	ZoneID           *string          `json:"zone_id,omitempty"`
	ProjectType      string           `json:"project_type"`
	FloorAreaSqm     *decimal.Decimal `json:"floor_area_sqm,omitempty"`
	TotalLotsPlanned *int             `json:"total_lots_planned,omitempty"`

	Status          Status           `json:"status"`
	AssessedFee     *decimal.Decimal `json:"assessed_fee,omitempty"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces structural invariants before the record is persisted.
func (a Application) Validate() error {
	if !a.Profile.ApplicantType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid applicant type")
	}
	if a.ProjectType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "project type is required").
			WithDetails(map[string]any{"project_type": "required"})
	}
	if a.Profile.IsSubdivision && a.TotalLotsPlanned != nil && *a.TotalLotsPlanned < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "total lots planned cannot be negative")
	}
	if (a.Status == StatusRejected) != (a.RejectionReason != nil) {
		return dErrors.New(dErrors.CodeInvalidInput, "rejection reason must be set exactly when status is rejected")
	}
	return nil
}
