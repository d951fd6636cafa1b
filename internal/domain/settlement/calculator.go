package settlement

import (
	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// CalculationInput carries everything the calculator needs. Plan may be nil
// when the subscriber has no enrollment loaded; CashbackAvailable is the
// (subscriber, partner) balance read by the caller.
type CalculationInput struct {
	Subscriber        *subscriber.Subscriber
	Plan              *plan.Plan
	SaleAmount        decimal.Decimal
	UsePoints         bool
	PointsToUse       decimal.Decimal
	UseCashback       bool
	CashbackToUse     decimal.Decimal
	CashbackAvailable decimal.Decimal
}

// Result is the settlement breakdown for one sale, prior to commit
type Result struct {
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	PointsApplied     decimal.Decimal `json:"points_applied"`
	CashbackApplied   decimal.Decimal `json:"cashback_applied"`
	CashbackGenerated decimal.Decimal `json:"cashback_generated"`
	PointsEarned      decimal.Decimal `json:"points_earned"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
}

// Calculate produces the settlement breakdown for a sale. It is pure: no
// ledger is mutated here; the caller commits the resulting transaction and
// ledger deltas atomically.
//
// The step order is fixed and not reorderable without changing the economics:
//
//  1. plan discount on the gross amount
//  2. points redemption, clamped to the requested amount, the subscriber's
//     balance and what is owed after discount
//  3. cashback redemption at this partner, clamped the same way against the
//     remaining amount
//  4. cashback and points accrue on the amount actually paid, never on the
//     discounted-away or redeemed-away portion
func Calculate(in CalculationInput) (*Result, error) {
	if in.Subscriber == nil {
		return nil, ierr.NewError("subscriber is required").
			WithHint("Settlement requires a subscriber").
			Mark(ierr.ErrValidation)
	}

	if in.SaleAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ierr.NewError("sale amount must be positive").
			WithHint("Sale amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": in.SaleAmount,
			}).
			Mark(ierr.ErrValidation)
	}

	if !in.Subscriber.IsActive() {
		return nil, ierr.NewError("subscription is not active").
			WithHint("Subscriber must have an active subscription to settle a sale").
			WithReportableDetails(map[string]any{
				"subscriber_id": in.Subscriber.ID,
				"status":        in.Subscriber.EffectiveStatus(),
			}).
			Mark(ierr.ErrInactiveSubscription)
	}

	discountPct := decimal.Zero
	cashbackPct := decimal.Zero
	pointsMult := decimal.Zero
	if in.Plan != nil {
		discountPct = in.Plan.DiscountPercent()
		cashbackPct = in.Plan.CashbackPercent()
		pointsMult = in.Plan.PointsMultiplier()
	}

	discountAmount := in.SaleAmount.Mul(discountPct).Div(oneHundred)
	afterDiscount := in.SaleAmount.Sub(discountAmount)

	pointsApplied := decimal.Zero
	if in.UsePoints && in.PointsToUse.GreaterThan(decimal.Zero) {
		pointsApplied = decimal.Min(in.PointsToUse, in.Subscriber.Points, afterDiscount)
	}

	remaining := afterDiscount.Sub(pointsApplied)

	cashbackApplied := decimal.Zero
	if in.UseCashback && in.CashbackToUse.GreaterThan(decimal.Zero) {
		cashbackApplied = decimal.Min(in.CashbackToUse, in.CashbackAvailable, remaining)
	}

	finalAmount := remaining.Sub(cashbackApplied)
	if finalAmount.IsNegative() {
		finalAmount = decimal.Zero
	}

	return &Result{
		DiscountAmount:    discountAmount,
		PointsApplied:     pointsApplied,
		CashbackApplied:   cashbackApplied,
		CashbackGenerated: finalAmount.Mul(cashbackPct).Div(oneHundred),
		PointsEarned:      finalAmount.Mul(pointsMult),
		FinalAmount:       finalAmount,
	}, nil
}
