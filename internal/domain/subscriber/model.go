package subscriber

import (
	"time"

	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

// Subscriber is a club member. It carries the global points balance and the
// plan-enrollment state machine; a subscriber holds at most one enrollment
// at a time.
type Subscriber struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Document string `db:"document" json:"document,omitempty"`

	// Points is the global loyalty points balance, spent 1:1 against
	// currency at the point of sale. Never negative.
	Points decimal.Decimal `db:"points" json:"points"`

	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	PlanID             *string                  `db:"plan_id" json:"plan_id,omitempty"`
	PlanStartDate      *time.Time               `db:"plan_start_date" json:"plan_start_date,omitempty"`
	// PlanEndDate nil means a non-expiring enrollment (free or SINGLE plans)
	PlanEndDate *time.Time `db:"plan_end_date" json:"plan_end_date,omitempty"`

	// Gateway-assigned identifiers, set once a paid checkout is initiated and
	// used to correlate webhook events back to this record.
	GatewayCustomerID     string `db:"gateway_customer_id" json:"gateway_customer_id,omitempty"`
	GatewaySubscriptionID string `db:"gateway_subscription_id" json:"gateway_subscription_id,omitempty"`
	GatewayPaymentID      string `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`

	// LastPaymentID is the idempotency guard for webhook activation: a
	// confirmed-payment event whose payment id matches is a no-op.
	LastPaymentID string     `db:"last_payment_id" json:"last_payment_id,omitempty"`
	LastPaymentAt *time.Time `db:"last_payment_at" json:"last_payment_at,omitempty"`

	types.BaseModel
}

func (s *Subscriber) TableName() string {
	return "subscribers"
}

// IsActive reports whether settlements may be computed for this subscriber
func (s *Subscriber) IsActive() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive && !s.IsExpired()
}

// IsExpired is the derived read-time expiration check. The persisted status
// is not eagerly flipped; the cron sweep promotes it to EXPIRED explicitly.
func (s *Subscriber) IsExpired() bool {
	return s.PlanEndDate != nil && s.PlanEndDate.Before(time.Now().UTC())
}

// EffectiveStatus is the status read-side callers should display: ACTIVE
// with a passed PlanEndDate reads as EXPIRED without mutating the record.
func (s *Subscriber) EffectiveStatus() types.SubscriptionStatus {
	if s.SubscriptionStatus == types.SubscriptionStatusActive && s.IsExpired() {
		return types.SubscriptionStatusExpired
	}
	return s.SubscriptionStatus
}

// Activate moves the enrollment to ACTIVE over the given validity window,
// overwriting any previous enrollment. planEndDate nil means non-expiring.
func (s *Subscriber) Activate(planID string, start time.Time, end *time.Time) {
	s.SubscriptionStatus = types.SubscriptionStatusActive
	s.PlanID = &planID
	s.PlanStartDate = &start
	s.PlanEndDate = end
	s.UpdatedAt = time.Now().UTC()
}

// RecordPayment marks the payment that produced the current validity window
func (s *Subscriber) RecordPayment(paymentID string, at time.Time) {
	s.LastPaymentID = paymentID
	s.LastPaymentAt = &at
}

func (s *Subscriber) Validate() error {
	if s.Points.IsNegative() {
		return ierr.NewError("points balance must not be negative").
			WithHint("Subscriber points balance can never go below zero").
			WithReportableDetails(map[string]any{
				"subscriber_id": s.ID,
				"points":        s.Points,
			}).
			Mark(ierr.ErrValidation)
	}

	if !s.SubscriptionStatus.Validate() {
		return ierr.NewError("invalid subscription status").
			WithHint("Unknown subscription status").
			WithReportableDetails(map[string]any{
				"subscriber_id": s.ID,
				"status":        s.SubscriptionStatus,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
