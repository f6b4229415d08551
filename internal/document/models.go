package document

import (
	"strings"
	"time"

	id "permitdesk/pkg/domain"
	dErrors "permitdesk/pkg/domain-errors"
)

// Type is a closed enum of document kinds plus an "other:" extension variant
// so ad-hoc attachments stay representable without widening the rule table.
type Type string

const (
	TypeTaxDeclaration          Type = "tax_declaration"
	TypeBarangayClearance       Type = "barangay_clearance"
	TypeProofOfOwnership        Type = "proof_of_ownership"
	TypeSiteDevelopmentPlan     Type = "site_development_plan"
	TypeBuildingPlans           Type = "building_plans"
	TypeBillOfMaterials         Type = "bill_of_materials"
	TypeLocationMap             Type = "location_map"
	TypeVicinityMap             Type = "vicinity_map"
	TypeBusinessPermit          Type = "business_permit"
	TypeAuthorizationLetter     Type = "authorization_letter"
	TypeLetterOfIntent          Type = "letter_of_intent"
	TypeProofOfLegalAuthority   Type = "proof_of_legal_authority"
	TypeEndorsementsApprovals   Type = "endorsements_approvals"
	TypeEnvironmentalCompliance Type = "environmental_compliance"
)

// TypeOtherPrefix marks extension document types outside the closed enum.
const TypeOtherPrefix = "other:"

// validTypes is the single source of truth for the closed part of the enum.
var validTypes = map[Type]bool{
	TypeTaxDeclaration:          true,
	TypeBarangayClearance:       true,
	TypeProofOfOwnership:        true,
	TypeSiteDevelopmentPlan:     true,
	TypeBuildingPlans:           true,
	TypeBillOfMaterials:         true,
	TypeLocationMap:             true,
	TypeVicinityMap:             true,
	TypeBusinessPermit:          true,
	TypeAuthorizationLetter:     true,
	TypeLetterOfIntent:          true,
	TypeProofOfLegalAuthority:   true,
	TypeEndorsementsApprovals:   true,
	TypeEnvironmentalCompliance: true,
}

// ParseType constructs a Type from external input. Extension types must carry
// a non-empty key after the "other:" prefix.
func ParseType(s string) (Type, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document type cannot be empty")
	}
	t := Type(s)
	if validTypes[t] {
		return t, nil
	}
	if key, ok := strings.CutPrefix(s, TypeOtherPrefix); ok && key != "" {
		return t, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid document type: "+s)
}

// IsOther reports whether the type is an extension outside the closed enum.
func (t Type) IsOther() bool {
	return strings.HasPrefix(string(t), TypeOtherPrefix)
}

func (t Type) String() string {
	return string(t)
}

// Status is the per-version review state. Sibling versions are independent;
// only the current version is eligible for review.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is a reviewer's verdict on the current version.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision constructs a Decision from external input.
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if d != DecisionApprove && d != DecisionReject {
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be 'approve' or 'reject'")
	}
	return d, nil
}

// FileInfo describes the uploaded bytes. The blob itself lives behind the
// opaque blob store reference.
type FileInfo struct {
	FileName  string `json:"file_name"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// Document is one immutable version of a document type for an application.
//
// Invariant: exactly one version per (ApplicationID, Type) has IsCurrent set.
// Prior versions are retained untouched for history; replace flips the old
// current flag and inserts the successor in a single atomic step.
type Document struct {
	ID            id.DocumentID    `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	Type          Type             `json:"document_type"`
	Version       int              `json:"version"`
	IsCurrent     bool             `json:"is_current"`
	Status        Status           `json:"status"`

	FileInfo
	BlobRef string `json:"blob_ref"`

	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewerNotes *string    `json:"reviewer_notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
