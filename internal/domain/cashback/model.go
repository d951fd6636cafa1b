package cashback

import (
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

// Balance is the cashback ledger row for one (subscriber, partner) pair.
// Created lazily on first accrual, mutated additively, never deleted by
// normal operation. Invariant: Balance == TotalEarned - TotalUsed.
type Balance struct {
	ID           string          `db:"id" json:"id"`
	SubscriberID string          `db:"subscriber_id" json:"subscriber_id"`
	PartnerID    string          `db:"partner_id" json:"partner_id"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
	TotalEarned  decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalUsed    decimal.Decimal `db:"total_used" json:"total_used"`

	types.BaseModel
}

func (b *Balance) TableName() string {
	return "cashback_balances"
}

// Validate checks the earn/use invariant that must hold after every operation
func (b *Balance) Validate() error {
	if b.Balance.IsNegative() || b.TotalEarned.IsNegative() || b.TotalUsed.IsNegative() {
		return ierr.NewError("cashback amounts must not be negative").
			WithHint("Cashback balance fields can never go below zero").
			WithReportableDetails(map[string]any{
				"subscriber_id": b.SubscriberID,
				"partner_id":    b.PartnerID,
				"balance":       b.Balance,
				"total_earned":  b.TotalEarned,
				"total_used":    b.TotalUsed,
			}).
			Mark(ierr.ErrValidation)
	}

	if !b.Balance.Equal(b.TotalEarned.Sub(b.TotalUsed)) {
		return ierr.NewError("cashback balance does not match earn/use totals").
			WithHint("Balance must equal total earned minus total used").
			WithReportableDetails(map[string]any{
				"subscriber_id": b.SubscriberID,
				"partner_id":    b.PartnerID,
				"balance":       b.Balance,
				"total_earned":  b.TotalEarned,
				"total_used":    b.TotalUsed,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Accrue increments the balance and the earned total
func (b *Balance) Accrue(amount decimal.Decimal) {
	b.Balance = b.Balance.Add(amount)
	b.TotalEarned = b.TotalEarned.Add(amount)
}

// Redeem decrements the balance and increments the used total; fails with
// ErrInsufficientCashback when the amount exceeds the available balance.
func (b *Balance) Redeem(amount decimal.Decimal) error {
	if amount.GreaterThan(b.Balance) {
		return ierr.NewError("cashback redemption exceeds balance").
			WithHint("Insufficient cashback balance for this redemption").
			WithReportableDetails(map[string]any{
				"subscriber_id": b.SubscriberID,
				"partner_id":    b.PartnerID,
				"balance":       b.Balance,
				"requested":     amount,
			}).
			Mark(ierr.ErrInsufficientCashback)
	}

	b.Balance = b.Balance.Sub(amount)
	b.TotalUsed = b.TotalUsed.Add(amount)
	return nil
}
