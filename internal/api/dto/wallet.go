package dto

import (
	"github.com/clubpulse/clubpulse/internal/domain/cashback"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/validator"
	"github.com/shopspring/decimal"
)

// CashbackBalanceResponse is one (subscriber, partner) cashback ledger row
type CashbackBalanceResponse struct {
	PartnerID   string          `json:"partner_id"`
	PartnerName string          `json:"partner_name,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	TotalEarned decimal.Decimal `json:"total_earned"`
	TotalUsed   decimal.Decimal `json:"total_used"`
}

func NewCashbackBalanceResponse(b *cashback.Balance) *CashbackBalanceResponse {
	return &CashbackBalanceResponse{
		PartnerID:   b.PartnerID,
		Balance:     b.Balance,
		TotalEarned: b.TotalEarned,
		TotalUsed:   b.TotalUsed,
	}
}

// WalletResponse aggregates a subscriber's loyalty position: the global points
// balance plus the per-partner cashback breakdown and its lifetime totals.
type WalletResponse struct {
	SubscriberID string          `json:"subscriber_id"`
	Points       decimal.Decimal `json:"points"`

	CashbackBalance  decimal.Decimal `json:"cashback_balance"`
	CashbackIssued   decimal.Decimal `json:"cashback_issued"`
	CashbackRedeemed decimal.Decimal `json:"cashback_redeemed"`

	Balances []*CashbackBalanceResponse `json:"balances"`
}

// CashbackSummaryResponse is the cashback-only view of the wallet
type CashbackSummaryResponse struct {
	SubscriberID string                     `json:"subscriber_id"`
	Balance      decimal.Decimal            `json:"balance"`
	TotalEarned  decimal.Decimal            `json:"total_earned"`
	TotalUsed    decimal.Decimal            `json:"total_used"`
	Balances     []*CashbackBalanceResponse `json:"balances"`
}

// RedeemCashbackRequest redeems accumulated cashback at one partner outside
// of a sale settlement.
type RedeemCashbackRequest struct {
	PartnerID string          `json:"partner_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r *RedeemCashbackRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("amount must be positive").
			WithHint("Redemption amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
