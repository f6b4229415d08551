package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"permitdesk/internal/application"
)

func profile(t application.ApplicantType, representative, subdivision bool) application.Profile {
	return application.Profile{
		ApplicantType:    t,
		IsRepresentative: representative,
		IsSubdivision:    subdivision,
	}
}

func requiredSet(p application.Profile) map[Type]bool {
	out := make(map[Type]bool)
	for _, typ := range RequiredOnly(RequiredTypes(p)) {
		out[typ] = true
	}
	return out
}

func TestRequiredTypes_BaseSet(t *testing.T) {
	required := requiredSet(profile(application.ApplicantIndividual, false, false))

	for _, typ := range []Type{
		TypeTaxDeclaration,
		TypeBarangayClearance,
		TypeSiteDevelopmentPlan,
		TypeBuildingPlans,
		TypeBillOfMaterials,
		TypeLocationMap,
		TypeVicinityMap,
		TypeProofOfOwnership,
	} {
		assert.True(t, required[typ], "individual applicant must require %s", typ)
	}
	assert.False(t, required[TypeBusinessPermit])
	assert.False(t, required[TypeAuthorizationLetter])
}

func TestRequiredTypes_CompanyAndDeveloperRequireBusinessPermit(t *testing.T) {
	for _, applicant := range []application.ApplicantType{application.ApplicantCompany, application.ApplicantDeveloper} {
		required := requiredSet(profile(applicant, false, false))
		assert.True(t, required[TypeBusinessPermit], "%s must require a business permit", applicant)
		assert.True(t, required[TypeProofOfOwnership])
	}
}

func TestRequiredTypes_RepresentativeRequiresAuthorizationLetter(t *testing.T) {
	for _, applicant := range []application.ApplicantType{
		application.ApplicantIndividual,
		application.ApplicantCompany,
		application.ApplicantDeveloper,
	} {
		withRep := requiredSet(profile(applicant, true, false))
		withoutRep := requiredSet(profile(applicant, false, false))
		assert.True(t, withRep[TypeAuthorizationLetter])
		assert.False(t, withoutRep[TypeAuthorizationLetter])
	}
}

func TestRequiredTypes_GovernmentProfile(t *testing.T) {
	p := profile(application.ApplicantGovernment, false, false)
	required := requiredSet(p)

	// Government entities substitute institutional paperwork for ownership
	// proof, and are never treated as represented parties.
	assert.False(t, required[TypeProofOfOwnership])
	assert.False(t, required[TypeAuthorizationLetter])
	assert.True(t, required[TypeLetterOfIntent])
	assert.True(t, required[TypeProofOfLegalAuthority])
	assert.True(t, required[TypeEndorsementsApprovals])

	var environmental *Requirement
	for _, req := range RequiredTypes(p) {
		if req.Type == TypeEnvironmentalCompliance {
			r := req
			environmental = &r
		}
	}
	if assert.NotNil(t, environmental, "government checklist must list environmental compliance") {
		assert.False(t, environmental.Required, "environmental compliance is optional")
	}
}

func TestRequiredTypes_GovernmentRepresentativeFlagIgnored(t *testing.T) {
	required := requiredSet(profile(application.ApplicantGovernment, true, false))
	assert.False(t, required[TypeAuthorizationLetter])
}

func TestRequiredTypes_IsDeterministic(t *testing.T) {
	p := profile(application.ApplicantDeveloper, true, true)
	first := RequiredTypes(p)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, RequiredTypes(p))
	}
}

func TestParseType(t *testing.T) {
	t.Run("closed enum value", func(t *testing.T) {
		typ, err := ParseType("tax_declaration")
		assert.NoError(t, err)
		assert.Equal(t, TypeTaxDeclaration, typ)
		assert.False(t, typ.IsOther())
	})

	t.Run("extension type", func(t *testing.T) {
		typ, err := ParseType("other:drainage_certificate")
		assert.NoError(t, err)
		assert.True(t, typ.IsOther())
	})

	t.Run("empty extension key rejected", func(t *testing.T) {
		_, err := ParseType("other:")
		assert.Error(t, err)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := ParseType("passport")
		assert.Error(t, err)
	})
}
