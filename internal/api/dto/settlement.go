package dto

import (
	"github.com/clubpulse/clubpulse/internal/domain/settlement"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/clubpulse/clubpulse/internal/validator"
	"github.com/shopspring/decimal"
)

// SettlementRequest is the terminal-side request for both previewing and
// committing a sale settlement.
type SettlementRequest struct {
	SubscriberID string          `json:"subscriber_id" validate:"required"`
	PartnerID    string          `json:"partner_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`

	UsePoints   bool            `json:"use_points"`
	PointsToUse decimal.Decimal `json:"points_to_use"`

	UseCashback   bool            `json:"use_cashback"`
	CashbackToUse decimal.Decimal `json:"cashback_to_use"`

	// Metadata is recorded on the committed transaction verbatim
	Metadata types.Metadata `json:"metadata,omitempty"`
}

func (r *SettlementRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("amount must be positive").
			WithHint("Sale amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	if r.UsePoints && r.PointsToUse.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("points_to_use must be positive when use_points is set").
			WithHint("Provide the points amount to redeem").
			Mark(ierr.ErrValidation)
	}

	if r.UseCashback && r.CashbackToUse.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("cashback_to_use must be positive when use_cashback is set").
			WithHint("Provide the cashback amount to redeem").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// SettlementPreviewResponse is the quoted breakdown before commit. Nothing is
// persisted for a preview.
type SettlementPreviewResponse struct {
	SubscriberID      string          `json:"subscriber_id"`
	PartnerID         string          `json:"partner_id"`
	Amount            decimal.Decimal `json:"amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	PointsApplied     decimal.Decimal `json:"points_applied"`
	CashbackApplied   decimal.Decimal `json:"cashback_applied"`
	CashbackGenerated decimal.Decimal `json:"cashback_generated"`
	PointsEarned      decimal.Decimal `json:"points_earned"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
}

func NewSettlementPreviewResponse(req *SettlementRequest, res *settlement.Result) *SettlementPreviewResponse {
	return &SettlementPreviewResponse{
		SubscriberID:      req.SubscriberID,
		PartnerID:         req.PartnerID,
		Amount:            req.Amount,
		DiscountAmount:    res.DiscountAmount,
		PointsApplied:     res.PointsApplied,
		CashbackApplied:   res.CashbackApplied,
		CashbackGenerated: res.CashbackGenerated,
		PointsEarned:      res.PointsEarned,
		FinalAmount:       res.FinalAmount,
	}
}

// SettlementResponse is a committed (or canceled) settlement transaction
type SettlementResponse struct {
	*settlement.Transaction
}

func NewSettlementResponse(t *settlement.Transaction) *SettlementResponse {
	return &SettlementResponse{Transaction: t}
}

// ListSettlementsResponse wraps a transaction listing
type ListSettlementsResponse struct {
	Items []*SettlementResponse `json:"items"`
	Total int                   `json:"total"`
}

func NewListSettlementsResponse(txns []*settlement.Transaction) *ListSettlementsResponse {
	items := make([]*SettlementResponse, len(txns))
	for i, t := range txns {
		items[i] = NewSettlementResponse(t)
	}
	return &ListSettlementsResponse{Items: items, Total: len(items)}
}
