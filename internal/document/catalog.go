package document

import "permitdesk/internal/application"

// Requirement pairs a document type with whether it must be supplied.
type Requirement struct {
	Type     Type `json:"type"`
	Required bool `json:"required"`
}

// RequiredTypes maps an applicant profile to its document requirement set.
// This is pure domain logic - no I/O, no side effects. The same profile always
// yields the same set, so the rule table can be tested over the full profile
// cross-product. Output order is stable but carries no meaning; type identity
// is the key.
//
// Rule chain:
//  1. Every application supplies the base set (tax declaration, barangay
//     clearance, plans, maps, bill of materials).
//  2. Ownership proof applies to everyone except government agencies, which
//     establish standing through letters of intent and legal authority instead.
//  3. Companies and developers additionally prove they operate as a business.
//  4. Representatives need a written authorization from the principal, except
//     for government filings where endorsements already cover authority.
func RequiredTypes(profile application.Profile) []Requirement {
	reqs := []Requirement{
		{Type: TypeTaxDeclaration, Required: true},
		{Type: TypeBarangayClearance, Required: true},
		{Type: TypeSiteDevelopmentPlan, Required: true},
		{Type: TypeBuildingPlans, Required: true},
		{Type: TypeBillOfMaterials, Required: true},
		{Type: TypeLocationMap, Required: true},
		{Type: TypeVicinityMap, Required: true},
	}

	if profile.ApplicantType == application.ApplicantGovernment {
		return append(reqs,
			Requirement{Type: TypeLetterOfIntent, Required: true},
			Requirement{Type: TypeProofOfLegalAuthority, Required: true},
			Requirement{Type: TypeEndorsementsApprovals, Required: true},
			Requirement{Type: TypeEnvironmentalCompliance, Required: false},
		)
	}

	reqs = append(reqs, Requirement{Type: TypeProofOfOwnership, Required: true})

	switch profile.ApplicantType {
	case application.ApplicantCompany, application.ApplicantDeveloper:
		reqs = append(reqs, Requirement{Type: TypeBusinessPermit, Required: true})
	}

	if profile.IsRepresentative {
		reqs = append(reqs, Requirement{Type: TypeAuthorizationLetter, Required: true})
	}

	return reqs
}

// RequiredOnly filters a requirement set down to the mandatory types.
func RequiredOnly(reqs []Requirement) []Type {
	var types []Type
	for _, r := range reqs {
		if r.Required {
			types = append(types, r.Type)
		}
	}
	return types
}
