package settlement

import (
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one settled sale. It is the sole
// source of truth for what the loyalty ledgers accumulated; rows are
// append-only and never physically deleted.
type Transaction struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`

	SubscriberID string `db:"subscriber_id" json:"subscriber_id"`
	PartnerID    string `db:"partner_id" json:"partner_id"`

	// Amount is the gross sale amount before any benefit
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	DiscountApplied   decimal.Decimal `db:"discount_applied" json:"discount_applied"`
	PointsUsed        decimal.Decimal `db:"points_used" json:"points_used"`
	PointsEarned      decimal.Decimal `db:"points_earned" json:"points_earned"`
	CashbackUsed      decimal.Decimal `db:"cashback_used" json:"cashback_used"`
	CashbackGenerated decimal.Decimal `db:"cashback_generated" json:"cashback_generated"`
	FinalAmount       decimal.Decimal `db:"final_amount" json:"final_amount"`

	Status types.TransactionStatus `db:"transaction_status" json:"transaction_status"`

	// Metadata carries terminal-supplied context (device id, receipt
	// reference) opaque to the settlement itself.
	Metadata types.Metadata `db:"metadata" json:"metadata,omitempty"`

	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "transactions"
}

// Validate checks the settlement arithmetic identities that must hold for
// every committed transaction.
func (t *Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("transaction amount must be positive").
			WithHint("Sale amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}

	for name, v := range map[string]decimal.Decimal{
		"discount_applied":   t.DiscountApplied,
		"points_used":        t.PointsUsed,
		"points_earned":      t.PointsEarned,
		"cashback_used":      t.CashbackUsed,
		"cashback_generated": t.CashbackGenerated,
		"final_amount":       t.FinalAmount,
	} {
		if v.IsNegative() {
			return ierr.NewError("transaction field must not be negative").
				WithHint("Settlement amounts can never be negative").
				WithReportableDetails(map[string]any{
					"field": name,
					"value": v,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	expected := t.Amount.Sub(t.DiscountApplied).Sub(t.PointsUsed).Sub(t.CashbackUsed)
	if !t.FinalAmount.Equal(expected) {
		return ierr.NewError("final amount does not match settlement breakdown").
			WithHint("Final amount must equal amount minus discount, points and cashback applied").
			WithReportableDetails(map[string]any{
				"amount":       t.Amount,
				"final_amount": t.FinalAmount,
				"expected":     expected,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
