// Package fee computes the regulatory fee owed for an application from its
// zoning classification and project attributes. All arithmetic uses decimals
// so assessments are reproducible bit-for-bit.
package fee

import (
	"github.com/shopspring/decimal"
)

// Project type labels surfaced in fee breakdowns.
const (
	ProjectSubdivision          = "Subdivision Project"
	ProjectResidentialHouse     = "Residential House"
	ProjectResidentialApartment = "Residential Apartment"
	ProjectCommercial           = "Commercial Project"
	ProjectIndustrial           = "Industrial Project"
)

// Input is everything the calculator needs. ClassificationCode may be empty
// when the zone is unknown or lookup failed; the residential house rule then
// applies.
type Input struct {
	IsSubdivision      bool
	TotalLotsPlanned   int
	ClassificationCode string
	FloorAreaSqm       decimal.Decimal
}

// Breakdown explains how the amount was derived.
type Breakdown struct {
	ProjectType string          `json:"type"`
	BaseFee     decimal.Decimal `json:"base_fee"`
	VariableFee decimal.Decimal `json:"variable_fee"`
}

// Assessment is the computed fee.
type Assessment struct {
	Amount    decimal.Decimal `json:"amount"`
	Breakdown Breakdown       `json:"breakdown"`
}

// Schedule holds the fee brackets. Centralizing the rates here replaces the
// string-keyed lookup tables the paper process used.
type Schedule struct {
	SubdivisionBase   decimal.Decimal
	SubdivisionPerLot decimal.Decimal

	ResidentialHouseFlat decimal.Decimal

	ResidentialApartmentBase   decimal.Decimal
	ResidentialApartmentPerSqm decimal.Decimal

	CommercialBase   decimal.Decimal
	CommercialPerSqm decimal.Decimal

	IndustrialBase   decimal.Decimal
	IndustrialPerSqm decimal.Decimal
}

// DefaultSchedule returns the current statutory rates.
func DefaultSchedule() Schedule {
	return Schedule{
		SubdivisionBase:            decimal.NewFromInt(1000),
		SubdivisionPerLot:          decimal.NewFromInt(5),
		ResidentialHouseFlat:       decimal.NewFromInt(500),
		ResidentialApartmentBase:   decimal.NewFromInt(500),
		ResidentialApartmentPerSqm: decimal.NewFromInt(5),
		CommercialBase:             decimal.NewFromInt(1000),
		CommercialPerSqm:           decimal.NewFromInt(10),
		IndustrialBase:             decimal.NewFromInt(1500),
		IndustrialPerSqm:           decimal.NewFromInt(15),
	}
}
