package plan

import (
	"testing"
	"time"

	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveBenefitLastPositionWins(t *testing.T) {
	p := &Plan{
		ID: "plan_dup",
		Benefits: []*Benefit{
			{Type: types.BenefitTypeDiscount, Percentage: decimal.NewFromInt(5), Position: 1},
			{Type: types.BenefitTypeCashback, Percentage: decimal.NewFromInt(3), Position: 2},
			{Type: types.BenefitTypeDiscount, Percentage: decimal.NewFromInt(15), Position: 3},
		},
	}

	// Duplicate DISCOUNT attachments resolve to the last one by position
	assert.True(t, p.DiscountPercent().Equal(decimal.NewFromInt(15)))
	assert.True(t, p.CashbackPercent().Equal(decimal.NewFromInt(3)))
	assert.True(t, p.PointsMultiplier().IsZero())
	assert.False(t, p.HasExclusiveAccess())
}

func TestEffectiveBenefitMissingType(t *testing.T) {
	p := &Plan{ID: "plan_empty"}
	assert.Nil(t, p.EffectiveBenefit(types.BenefitTypeDiscount))
	assert.True(t, p.DiscountPercent().IsZero())
}

func TestNextPeriodEnd(t *testing.T) {
	from := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	monthly := &Plan{Period: types.PlanPeriodMonthly}
	end := monthly.NextPeriodEnd(from)
	require.NotNil(t, end)
	assert.Equal(t, from.AddDate(0, 1, 0), *end)

	yearly := &Plan{Period: types.PlanPeriodYearly}
	end = yearly.NextPeriodEnd(from)
	require.NotNil(t, end)
	assert.Equal(t, from.AddDate(1, 0, 0), *end)

	single := &Plan{Period: types.PlanPeriodSingle}
	assert.Nil(t, single.NextPeriodEnd(from))
}

func TestIsFree(t *testing.T) {
	assert.True(t, (&Plan{Price: decimal.Zero}).IsFree())
	assert.False(t, (&Plan{Price: decimal.NewFromInt(29)}).IsFree())
}

func TestBenefitValidate(t *testing.T) {
	valid := &Benefit{Type: types.BenefitTypeDiscount, Percentage: decimal.NewFromInt(50)}
	require.NoError(t, valid.Validate())

	overRange := &Benefit{Type: types.BenefitTypeCashback, Percentage: decimal.NewFromInt(120)}
	require.Error(t, overRange.Validate())

	negativeMult := &Benefit{Type: types.BenefitTypePoints, Multiplier: decimal.NewFromInt(-1)}
	require.Error(t, negativeMult.Validate())

	unknown := &Benefit{Type: types.BenefitType("FREE_SHIPPING")}
	require.Error(t, unknown.Validate())
}
