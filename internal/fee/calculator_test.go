package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())

	area := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

	tests := []struct {
		name       string
		in         Input
		wantAmount string
		wantType   string
		wantBase   string
		wantVarFee string
	}{
		{
			name:       "R1 flat rate",
			in:         Input{ClassificationCode: "R1", FloorAreaSqm: area(80)},
			wantAmount: "500", wantType: ProjectResidentialHouse, wantBase: "500", wantVarFee: "0",
		},
		{
			name:       "unresolved zone falls back to residential house",
			in:         Input{ClassificationCode: "", FloorAreaSqm: area(250)},
			wantAmount: "500", wantType: ProjectResidentialHouse, wantBase: "500", wantVarFee: "0",
		},
		{
			name:       "unknown code falls back to residential house",
			in:         Input{ClassificationCode: "X9", FloorAreaSqm: area(250)},
			wantAmount: "500", wantType: ProjectResidentialHouse, wantBase: "500", wantVarFee: "0",
		},
		{
			name:       "R3 apartment bills per square meter",
			in:         Input{ClassificationCode: "R3", FloorAreaSqm: area(100)},
			wantAmount: "1000", wantType: ProjectResidentialApartment, wantBase: "500", wantVarFee: "500",
		},
		{
			name:       "R2 apartment",
			in:         Input{ClassificationCode: "R2", FloorAreaSqm: area(40)},
			wantAmount: "700", wantType: ProjectResidentialApartment, wantBase: "500", wantVarFee: "200",
		},
		{
			name:       "C1 commercial",
			in:         Input{ClassificationCode: "C1", FloorAreaSqm: area(50)},
			wantAmount: "1500", wantType: ProjectCommercial, wantBase: "1000", wantVarFee: "500",
		},
		{
			name:       "I1 industrial",
			in:         Input{ClassificationCode: "I1", FloorAreaSqm: area(100)},
			wantAmount: "3000", wantType: ProjectIndustrial, wantBase: "1500", wantVarFee: "1500",
		},
		{
			name:       "subdivision ignores classification",
			in:         Input{IsSubdivision: true, TotalLotsPlanned: 10, ClassificationCode: "C1"},
			wantAmount: "1050", wantType: ProjectSubdivision, wantBase: "1000", wantVarFee: "50",
		},
		{
			name:       "subdivision with zero lots is base only",
			in:         Input{IsSubdivision: true, TotalLotsPlanned: 0},
			wantAmount: "1000", wantType: ProjectSubdivision, wantBase: "1000", wantVarFee: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(tt.in)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.wantAmount)),
				"amount: want %s, got %s", tt.wantAmount, got.Amount)
			assert.Equal(t, tt.wantType, got.Breakdown.ProjectType)
			assert.True(t, got.Breakdown.BaseFee.Equal(decimal.RequireFromString(tt.wantBase)))
			assert.True(t, got.Breakdown.VariableFee.Equal(decimal.RequireFromString(tt.wantVarFee)))
		})
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())
	in := Input{ClassificationCode: "C2", FloorAreaSqm: decimal.RequireFromString("123.45")}

	first := calc.Calculate(in)
	for i := 0; i < 10; i++ {
		again := calc.Calculate(in)
		assert.True(t, first.Amount.Equal(again.Amount))
	}
}
