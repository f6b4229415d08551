package fee

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Calculator applies a fee schedule to project attributes.
// This is pure domain logic - no I/O, no side effects.
type Calculator struct {
	schedule Schedule
}

func NewCalculator(schedule Schedule) *Calculator {
	return &Calculator{schedule: schedule}
}

// Calculate derives the fee for one application.
//
// Rule chain:
//  1. Subdivision projects are classification-independent: base plus a
//     per-lot rate over the planned lot count.
//  2. Otherwise the classification code prefix selects the bracket: R2/R3
//     bill per square meter on top of the apartment base, C* and I* likewise
//     with their own rates, and everything else - R1, unknown codes, or an
//     unresolved zone - falls back to the flat residential house fee.
func (c *Calculator) Calculate(in Input) Assessment {
	if in.IsSubdivision {
		lots := decimal.NewFromInt(int64(in.TotalLotsPlanned))
		variable := c.schedule.SubdivisionPerLot.Mul(lots)
		return Assessment{
			Amount: c.schedule.SubdivisionBase.Add(variable),
			Breakdown: Breakdown{
				ProjectType: ProjectSubdivision,
				BaseFee:     c.schedule.SubdivisionBase,
				VariableFee: variable,
			},
		}
	}

	code := strings.ToUpper(in.ClassificationCode)
	switch {
	case strings.HasPrefix(code, "R2"), strings.HasPrefix(code, "R3"):
		variable := c.schedule.ResidentialApartmentPerSqm.Mul(in.FloorAreaSqm)
		return Assessment{
			Amount: c.schedule.ResidentialApartmentBase.Add(variable),
			Breakdown: Breakdown{
				ProjectType: ProjectResidentialApartment,
				BaseFee:     c.schedule.ResidentialApartmentBase,
				VariableFee: variable,
			},
		}
	case strings.HasPrefix(code, "C"):
		variable := c.schedule.CommercialPerSqm.Mul(in.FloorAreaSqm)
		return Assessment{
			Amount: c.schedule.CommercialBase.Add(variable),
			Breakdown: Breakdown{
				ProjectType: ProjectCommercial,
				BaseFee:     c.schedule.CommercialBase,
				VariableFee: variable,
			},
		}
	case strings.HasPrefix(code, "I"):
		variable := c.schedule.IndustrialPerSqm.Mul(in.FloorAreaSqm)
		return Assessment{
			Amount: c.schedule.IndustrialBase.Add(variable),
			Breakdown: Breakdown{
				ProjectType: ProjectIndustrial,
				BaseFee:     c.schedule.IndustrialBase,
				VariableFee: variable,
			},
		}
	default:
		return Assessment{
			Amount: c.schedule.ResidentialHouseFlat,
			Breakdown: Breakdown{
				ProjectType: ProjectResidentialHouse,
				BaseFee:     c.schedule.ResidentialHouseFlat,
				VariableFee: decimal.Zero,
			},
		}
	}
}
