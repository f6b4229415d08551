package fee

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"permitdesk/internal/zoning"
)

// AssessRequest carries the application attributes that drive the fee.
type AssessRequest struct {
	ZoneID           *string
	IsSubdivision    bool
	FloorAreaSqm     *decimal.Decimal
	TotalLotsPlanned *int
}

// Assessor resolves the zoning classification and delegates to the pure
// calculator. Lookup failures are not errors: the residential house rule is
// the documented fallback for unresolved zones.
type Assessor struct {
	zones  zoning.Resolver
	calc   *Calculator
	logger *slog.Logger
}

func NewAssessor(zones zoning.Resolver, calc *Calculator, logger *slog.Logger) *Assessor {
	return &Assessor{zones: zones, calc: calc, logger: logger}
}

// Assess computes the fee for one application.
func (a *Assessor) Assess(ctx context.Context, req AssessRequest) Assessment {
	in := Input{IsSubdivision: req.IsSubdivision}
	if req.TotalLotsPlanned != nil {
		in.TotalLotsPlanned = *req.TotalLotsPlanned
	}
	if req.FloorAreaSqm != nil {
		in.FloorAreaSqm = *req.FloorAreaSqm
	}

	if !req.IsSubdivision && req.ZoneID != nil {
		classification, err := a.zones.Resolve(ctx, *req.ZoneID)
		if err != nil {
			a.logger.WarnContext(ctx, "zone classification unresolved, applying residential house rule",
				"zone_id", *req.ZoneID,
				"error", err,
			)
		} else {
			in.ClassificationCode = classification.Code
		}
	}

	return a.calc.Calculate(in)
}
