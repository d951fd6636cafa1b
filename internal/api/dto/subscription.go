package dto

import (
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/clubpulse/clubpulse/internal/validator"
)

// CheckoutRequest starts (or restarts) an enrollment for a subscriber
type CheckoutRequest struct {
	SubscriberID string `json:"subscriber_id" validate:"required"`
	PlanID       string `json:"plan_id" validate:"required"`
}

func (r *CheckoutRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CheckoutResponse reports the checkout outcome. Free plans activate in place;
// priced plans hand back the gateway agreement to complete payment against.
type CheckoutResponse struct {
	SubscriberID          string                   `json:"subscriber_id"`
	PlanID                string                   `json:"plan_id"`
	SubscriptionStatus    types.SubscriptionStatus `json:"subscription_status"`
	GatewaySubscriptionID string                   `json:"gateway_subscription_id,omitempty"`
	InvoiceURL            string                   `json:"invoice_url,omitempty"`
}

// SubscriptionResponse is the enrollment view of a subscriber. Status is the
// persisted state machine value; EffectiveStatus folds in read-time expiration.
type SubscriptionResponse struct {
	SubscriberID    string                   `json:"subscriber_id"`
	Status          types.SubscriptionStatus `json:"status"`
	EffectiveStatus types.SubscriptionStatus `json:"effective_status"`
	PlanID          *string                  `json:"plan_id,omitempty"`
	PlanStartDate   *time.Time               `json:"plan_start_date,omitempty"`
	PlanEndDate     *time.Time               `json:"plan_end_date,omitempty"`
	LastPaymentAt   *time.Time               `json:"last_payment_at,omitempty"`
}

func NewSubscriptionResponse(s *subscriber.Subscriber) *SubscriptionResponse {
	return &SubscriptionResponse{
		SubscriberID:    s.ID,
		Status:          s.SubscriptionStatus,
		EffectiveStatus: s.EffectiveStatus(),
		PlanID:          s.PlanID,
		PlanStartDate:   s.PlanStartDate,
		PlanEndDate:     s.PlanEndDate,
		LastPaymentAt:   s.LastPaymentAt,
	}
}

// ExpireSweepResponse reports one run of the subscription expiration sweep
type ExpireSweepResponse struct {
	Expired int `json:"expired"`
}
