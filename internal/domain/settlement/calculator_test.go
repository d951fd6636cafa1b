package settlement

import (
	"testing"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeSubscriber(points decimal.Decimal) *subscriber.Subscriber {
	end := time.Now().UTC().Add(24 * time.Hour)
	return &subscriber.Subscriber{
		ID:                 "sub_test",
		Points:             points,
		SubscriptionStatus: types.SubscriptionStatusActive,
		PlanEndDate:        &end,
	}
}

func planWith(discountPct, cashbackPct, pointsMult string) *plan.Plan {
	p := &plan.Plan{ID: "plan_test", Period: types.PlanPeriodMonthly}
	pos := 0
	add := func(t types.BenefitType, pct, mult string) {
		pos++
		p.Benefits = append(p.Benefits, &plan.Benefit{
			PlanID:     p.ID,
			Type:       t,
			Percentage: decimal.RequireFromString(pct),
			Multiplier: decimal.RequireFromString(mult),
			Position:   pos,
		})
	}
	if discountPct != "" {
		add(types.BenefitTypeDiscount, discountPct, "0")
	}
	if cashbackPct != "" {
		add(types.BenefitTypeCashback, cashbackPct, "0")
	}
	if pointsMult != "" {
		add(types.BenefitTypePoints, "0", pointsMult)
	}
	return p
}

func TestCalculateDiscountAndCashback(t *testing.T) {
	// 100.00 sale, 10% discount, 5% cashback, no redemptions
	result, err := Calculate(CalculationInput{
		Subscriber: activeSubscriber(decimal.Zero),
		Plan:       planWith("10", "5", ""),
		SaleAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(10)), "discount: %s", result.DiscountAmount)
	assert.True(t, result.PointsApplied.IsZero())
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(90)), "final: %s", result.FinalAmount)
	assert.True(t, result.CashbackGenerated.Equal(decimal.RequireFromString("4.5")), "cashback: %s", result.CashbackGenerated)
}

func TestCalculatePointsClampToRemaining(t *testing.T) {
	// 50.00 sale, 10% cashback plan, 60 points held and requested. Points
	// clamp to what is owed; a fully paid-by-points sale generates nothing.
	result, err := Calculate(CalculationInput{
		Subscriber:  activeSubscriber(decimal.NewFromInt(60)),
		Plan:        planWith("", "10", ""),
		SaleAmount:  decimal.NewFromInt(50),
		UsePoints:   true,
		PointsToUse: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	assert.True(t, result.PointsApplied.Equal(decimal.NewFromInt(50)), "applied: %s", result.PointsApplied)
	assert.True(t, result.FinalAmount.IsZero())
	assert.True(t, result.CashbackGenerated.IsZero())
	assert.True(t, result.PointsEarned.IsZero())
}

func TestCalculatePointsClampToBalance(t *testing.T) {
	result, err := Calculate(CalculationInput{
		Subscriber:  activeSubscriber(decimal.NewFromInt(15)),
		Plan:        planWith("", "", ""),
		SaleAmount:  decimal.NewFromInt(100),
		UsePoints:   true,
		PointsToUse: decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	assert.True(t, result.PointsApplied.Equal(decimal.NewFromInt(15)))
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(85)))
}

func TestCalculateInactiveSubscriber(t *testing.T) {
	sub := activeSubscriber(decimal.Zero)
	sub.SubscriptionStatus = types.SubscriptionStatusSuspended

	_, err := Calculate(CalculationInput{
		Subscriber: sub,
		Plan:       planWith("10", "", ""),
		SaleAmount: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.True(t, ierr.IsInactiveSubscription(err))
}

func TestCalculateExpiredWindowIsInactive(t *testing.T) {
	sub := activeSubscriber(decimal.Zero)
	past := time.Now().UTC().Add(-time.Hour)
	sub.PlanEndDate = &past

	_, err := Calculate(CalculationInput{
		Subscriber: sub,
		SaleAmount: decimal.NewFromInt(10),
	})
	require.Error(t, err)
	assert.True(t, ierr.IsInactiveSubscription(err))
}

func TestCalculateNonPositiveAmount(t *testing.T) {
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := Calculate(CalculationInput{
			Subscriber: activeSubscriber(decimal.Zero),
			SaleAmount: amount,
		})
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	}
}

func TestCalculateCashbackRedemptionOrder(t *testing.T) {
	// 100.00 sale, 10% discount. 20 points and 30 cashback requested with
	// plenty available: discount first, then points, then cashback.
	result, err := Calculate(CalculationInput{
		Subscriber:        activeSubscriber(decimal.NewFromInt(20)),
		Plan:              planWith("10", "", ""),
		SaleAmount:        decimal.NewFromInt(100),
		UsePoints:         true,
		PointsToUse:       decimal.NewFromInt(20),
		UseCashback:       true,
		CashbackToUse:     decimal.NewFromInt(30),
		CashbackAvailable: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.True(t, result.DiscountAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, result.PointsApplied.Equal(decimal.NewFromInt(20)))
	assert.True(t, result.CashbackApplied.Equal(decimal.NewFromInt(30)))
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(40)))
}

func TestCalculateCashbackClampToAvailable(t *testing.T) {
	result, err := Calculate(CalculationInput{
		Subscriber:        activeSubscriber(decimal.Zero),
		SaleAmount:        decimal.NewFromInt(50),
		UseCashback:       true,
		CashbackToUse:     decimal.NewFromInt(40),
		CashbackAvailable: decimal.NewFromInt(12),
	})
	require.NoError(t, err)

	assert.True(t, result.CashbackApplied.Equal(decimal.NewFromInt(12)))
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(38)))
}

func TestCalculatePointsEarnedOnFinalAmount(t *testing.T) {
	// 2x multiplier earns on what was actually paid, not the gross amount
	result, err := Calculate(CalculationInput{
		Subscriber:  activeSubscriber(decimal.NewFromInt(30)),
		Plan:        planWith("", "", "2"),
		SaleAmount:  decimal.NewFromInt(100),
		UsePoints:   true,
		PointsToUse: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(70)))
	assert.True(t, result.PointsEarned.Equal(decimal.NewFromInt(140)), "earned: %s", result.PointsEarned)
}

func TestCalculateNilPlan(t *testing.T) {
	// Enrollment without a loaded plan settles with no benefits at all
	result, err := Calculate(CalculationInput{
		Subscriber: activeSubscriber(decimal.Zero),
		SaleAmount: decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	assert.True(t, result.DiscountAmount.IsZero())
	assert.True(t, result.CashbackGenerated.IsZero())
	assert.True(t, result.FinalAmount.Equal(decimal.NewFromInt(80)))
}

func TestTransactionValidateIdentity(t *testing.T) {
	txn := &Transaction{
		ID:              "txn_1",
		SubscriberID:    "sub_1",
		PartnerID:       "ptnr_1",
		Amount:          decimal.NewFromInt(100),
		DiscountApplied: decimal.NewFromInt(10),
		PointsUsed:      decimal.NewFromInt(20),
		CashbackUsed:    decimal.NewFromInt(5),
		FinalAmount:     decimal.NewFromInt(65),
		Status:          types.TransactionStatusCompleted,
	}
	require.NoError(t, txn.Validate())

	txn.FinalAmount = decimal.NewFromInt(70)
	require.Error(t, txn.Validate())
}
