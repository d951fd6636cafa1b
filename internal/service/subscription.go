package service

import (
	"context"
	"time"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	"github.com/clubpulse/clubpulse/internal/cache"
	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/gateway"
	"github.com/clubpulse/clubpulse/internal/types"
)

const planCacheExpiry = 5 * time.Minute

// SubscriptionService drives the plan-enrollment state machine. Checkout and
// member-initiated cancellation talk to the payment gateway; the transition
// methods are invoked by the webhook dispatcher and the expiration sweep.
type SubscriptionService interface {
	Checkout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	GetSubscription(ctx context.Context, subscriberID string) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, subscriberID string) (*dto.SubscriptionResponse, error)

	// ActivateFromPayment applies a confirmed gateway payment: the enrollment
	// becomes ACTIVE and the validity window extends by one billing period.
	// Idempotent per payment id.
	ActivateFromPayment(ctx context.Context, subscriberID, paymentID string) error

	// Suspend flips ACTIVE to SUSPENDED on an overdue payment; any other
	// state is left untouched.
	Suspend(ctx context.Context, subscriberID string) error

	// MarkCanceled flips the enrollment to CANCELED. With onlyIfActive the
	// transition applies to ACTIVE enrollments only (refund semantics);
	// without it any non-terminal enrollment cancels (gateway deletion).
	MarkCanceled(ctx context.Context, subscriberID string, onlyIfActive bool) error

	// SyncGatewaySubscription records the gateway's agreement id when the
	// gateway reports it before our checkout response was persisted.
	SyncGatewaySubscription(ctx context.Context, subscriberID, gatewaySubscriptionID string) error

	// ExpireDueSubscriptions promotes ACTIVE enrollments with a passed
	// validity window to the persisted EXPIRED status. Returns the count.
	ExpireDueSubscriptions(ctx context.Context) (int, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) Checkout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	planRec, err := s.getPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.GetByID(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}
	if sub.SubscriptionStatus == types.SubscriptionStatusInactive {
		return nil, ierr.NewError("subscriber is inactive").
			WithHint("Inactive subscribers cannot enroll in a plan").
			WithReportableDetails(map[string]any{
				"subscriber_id": sub.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if planRec.IsFree() {
		return s.checkoutFree(ctx, req, planRec)
	}
	return s.checkoutPaid(ctx, req, planRec, sub)
}

// checkoutFree activates immediately: no payment, no validity window.
func (s *subscriptionService) checkoutFree(ctx context.Context, req *dto.CheckoutRequest, planRec *plan.Plan) (*dto.CheckoutResponse, error) {
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubRepo.GetByIDForUpdate(ctx, req.SubscriberID)
		if err != nil {
			return err
		}
		sub.Activate(planRec.ID, time.Now().UTC(), nil)
		return s.SubRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("free plan activated",
		"subscriber_id", req.SubscriberID,
		"plan_id", planRec.ID,
	)

	return &dto.CheckoutResponse{
		SubscriberID:       req.SubscriberID,
		PlanID:             planRec.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
	}, nil
}

// checkoutPaid opens a billing agreement at the gateway and records the
// gateway identifiers plus the plan intent. Activation happens later, when
// the payment-confirmed webhook arrives.
func (s *subscriptionService) checkoutPaid(ctx context.Context, req *dto.CheckoutRequest, planRec *plan.Plan, sub *subscriber.Subscriber) (*dto.CheckoutResponse, error) {
	customerID := sub.GatewayCustomerID
	if customerID == "" {
		customer, err := s.GatewayClient.CreateCustomer(ctx, &gateway.CreateCustomerRequest{
			Name:     sub.Name,
			Email:    sub.Email,
			Document: sub.Document,
		})
		if err != nil {
			return nil, err
		}
		customerID = customer.ID
	}

	agreement, err := s.GatewayClient.CreateSubscription(ctx, &gateway.CreateSubscriptionRequest{
		CustomerID:  customerID,
		Value:       planRec.Price,
		Cycle:       gateway.CycleFromPeriod(planRec.Period.String()),
		Description: planRec.Name,
		NextDueDate: gateway.NextDueDate(time.Now()),
	})
	if err != nil {
		return nil, err
	}

	var status types.SubscriptionStatus
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.SubRepo.GetByIDForUpdate(ctx, req.SubscriberID)
		if err != nil {
			return err
		}
		locked.GatewayCustomerID = customerID
		locked.GatewaySubscriptionID = agreement.ID
		locked.PlanID = &planRec.ID
		status = locked.SubscriptionStatus
		return s.SubRepo.Update(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("checkout initiated",
		"subscriber_id", req.SubscriberID,
		"plan_id", planRec.ID,
		"gateway_subscription_id", agreement.ID,
	)

	return &dto.CheckoutResponse{
		SubscriberID:          req.SubscriberID,
		PlanID:                planRec.ID,
		SubscriptionStatus:    status,
		GatewaySubscriptionID: agreement.ID,
		InvoiceURL:            agreement.InvoiceURL,
	}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, subscriberID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.GetByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, subscriberID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.GetByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	if sub.GatewaySubscriptionID != "" {
		if err := s.GatewayClient.CancelSubscription(ctx, sub.GatewaySubscriptionID); err != nil {
			return nil, err
		}
	}

	if err := s.MarkCanceled(ctx, subscriberID, false); err != nil {
		return nil, err
	}
	return s.GetSubscription(ctx, subscriberID)
}

func (s *subscriptionService) ActivateFromPayment(ctx context.Context, subscriberID, paymentID string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubRepo.GetByIDForUpdate(ctx, subscriberID)
		if err != nil {
			return err
		}

		// Re-delivered confirmation for the payment that produced the current
		// window: nothing to do.
		if sub.SubscriptionStatus == types.SubscriptionStatusActive && sub.LastPaymentID == paymentID {
			s.Logger.Infow("duplicate payment confirmation ignored",
				"subscriber_id", subscriberID,
				"payment_id", paymentID,
			)
			return nil
		}

		if sub.SubscriptionStatus == types.SubscriptionStatusInactive {
			return ierr.NewError("subscriber is inactive").
				WithHint("Payments cannot reactivate an inactive subscriber").
				WithReportableDetails(map[string]any{
					"subscriber_id": subscriberID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if sub.PlanID == nil {
			return ierr.NewError("subscriber has no plan to activate").
				WithHint("A payment was confirmed for a subscriber without a checkout").
				WithReportableDetails(map[string]any{
					"subscriber_id": subscriberID,
					"payment_id":    paymentID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		planRec, err := s.getPlan(ctx, *sub.PlanID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sub.Activate(planRec.ID, now, planRec.NextPeriodEnd(now))
		sub.RecordPayment(paymentID, now)
		sub.GatewayPaymentID = paymentID

		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		s.Logger.Infow("subscription activated",
			"subscriber_id", subscriberID,
			"plan_id", planRec.ID,
			"payment_id", paymentID,
			"plan_end_date", sub.PlanEndDate,
		)
		return nil
	})
}

func (s *subscriptionService) Suspend(ctx context.Context, subscriberID string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubRepo.GetByIDForUpdate(ctx, subscriberID)
		if err != nil {
			return err
		}

		if sub.SubscriptionStatus != types.SubscriptionStatusActive {
			s.Logger.Infow("suspend skipped, subscription not active",
				"subscriber_id", subscriberID,
				"status", sub.SubscriptionStatus,
			)
			return nil
		}

		sub.SubscriptionStatus = types.SubscriptionStatusSuspended
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		s.Logger.Infow("subscription suspended", "subscriber_id", subscriberID)
		return nil
	})
}

func (s *subscriptionService) MarkCanceled(ctx context.Context, subscriberID string, onlyIfActive bool) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubRepo.GetByIDForUpdate(ctx, subscriberID)
		if err != nil {
			return err
		}

		switch sub.SubscriptionStatus {
		case types.SubscriptionStatusCanceled, types.SubscriptionStatusInactive:
			return nil
		}
		if onlyIfActive && sub.SubscriptionStatus != types.SubscriptionStatusActive {
			s.Logger.Infow("cancel skipped, subscription not active",
				"subscriber_id", subscriberID,
				"status", sub.SubscriptionStatus,
			)
			return nil
		}

		sub.SubscriptionStatus = types.SubscriptionStatusCanceled
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		s.Logger.Infow("subscription canceled", "subscriber_id", subscriberID)
		return nil
	})
}

func (s *subscriptionService) SyncGatewaySubscription(ctx context.Context, subscriberID, gatewaySubscriptionID string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubRepo.GetByIDForUpdate(ctx, subscriberID)
		if err != nil {
			return err
		}
		if sub.GatewaySubscriptionID == gatewaySubscriptionID {
			return nil
		}
		sub.GatewaySubscriptionID = gatewaySubscriptionID
		return s.SubRepo.Update(ctx, sub)
	})
}

func (s *subscriptionService) ExpireDueSubscriptions(ctx context.Context) (int, error) {
	due, err := s.SubRepo.ListExpired(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range due {
		err := s.DB.WithTx(ctx, func(ctx context.Context) error {
			sub, err := s.SubRepo.GetByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			// Re-check under lock; a renewal payment may have extended the
			// window between the listing and this transaction.
			if sub.SubscriptionStatus != types.SubscriptionStatusActive || !sub.IsExpired() {
				return nil
			}
			sub.SubscriptionStatus = types.SubscriptionStatusExpired
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}
			expired++
			return nil
		})
		if err != nil {
			s.Logger.Errorw("failed to expire subscription",
				"subscriber_id", candidate.ID,
				"error", err,
			)
		}
	}

	if expired > 0 {
		s.Logger.Infow("expiration sweep completed", "expired", expired)
	}
	return expired, nil
}

// getPlan reads a plan through the in-memory cache; plans are read-only
// reference data to this service.
func (s *subscriptionService) getPlan(ctx context.Context, planID string) (*plan.Plan, error) {
	key := cache.GenerateKey(cache.PrefixPlan, planID)
	if cached, ok := s.Cache.Get(ctx, key); ok {
		if p, ok := cached.(*plan.Plan); ok {
			return p, nil
		}
	}

	p, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, key, p, planCacheExpiry)
	return p, nil
}
