package service

import (
	"context"
	"time"

	"github.com/clubpulse/clubpulse/internal/cache"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/gateway"
	"github.com/clubpulse/clubpulse/internal/idempotency"
)

const webhookDedupeExpiry = 24 * time.Hour

// WebhookService classifies and applies gateway callback events. The gateway
// retries on any non-200, so HandleEvent reports failures to the caller for
// logging only; the HTTP handler acknowledges regardless.
type WebhookService interface {
	HandleEvent(ctx context.Context, event *gateway.WebhookEvent) error
}

type webhookService struct {
	ServiceParams
	subscriptionService SubscriptionService
	idempotency         *idempotency.Generator
}

func NewWebhookService(params ServiceParams, subscriptionService SubscriptionService) WebhookService {
	return &webhookService{
		ServiceParams:       params,
		subscriptionService: subscriptionService,
		idempotency:         idempotency.NewGenerator(),
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, event *gateway.WebhookEvent) error {
	if event == nil || event.Event == "" {
		return ierr.NewError("empty webhook event").
			WithHint("Webhook payload carried no event type").
			Mark(ierr.ErrValidation)
	}

	log := s.Logger.With(
		"event", event.Event,
		"gateway_entity_id", event.EntityID(),
	)

	// Cheap duplicate suppression for gateway redeliveries. The persistent
	// guard (LastPaymentID, checked under the row lock) remains authoritative;
	// this only short-circuits the common retry storm.
	dedupeKey := cache.GenerateKey(cache.PrefixWebhookEvent, s.idempotency.GenerateKey(
		idempotency.ScopeWebhookEvent,
		map[string]interface{}{
			"entity_id": event.EntityID(),
			"event":     string(event.Event),
		},
	))
	if _, seen := s.Cache.Get(ctx, dedupeKey); seen {
		log.Infow("duplicate webhook delivery short-circuited")
		return nil
	}

	var err error
	switch event.Event {
	case gateway.EventPaymentCreated, gateway.EventPaymentDeleted:
		// Informational only; no enrollment transition.
		log.Infow("payment lifecycle event recorded")

	case gateway.EventPaymentConfirmed, gateway.EventPaymentReceived:
		err = s.handlePaymentConfirmed(ctx, event)

	case gateway.EventPaymentOverdue:
		err = s.withPaymentSubscriber(ctx, event, s.subscriptionService.Suspend)

	case gateway.EventPaymentRefunded:
		err = s.withPaymentSubscriber(ctx, event, func(ctx context.Context, id string) error {
			return s.subscriptionService.MarkCanceled(ctx, id, true)
		})

	case gateway.EventSubscriptionCreated, gateway.EventSubscriptionUpdated:
		err = s.handleSubscriptionSync(ctx, event)

	case gateway.EventSubscriptionDeleted, gateway.EventSubscriptionInactivated:
		err = s.withSubscriptionSubscriber(ctx, event, func(ctx context.Context, id string) error {
			return s.subscriptionService.MarkCanceled(ctx, id, false)
		})

	default:
		log.Warnw("unknown webhook event type ignored")
	}

	if err != nil {
		// Unknown gateway identifiers are expected noise (test events, other
		// tenants of the same gateway account); everything else is a real
		// ingestion failure.
		if ierr.IsNotFound(err) {
			log.Infow("webhook event dropped, no matching subscriber")
			return nil
		}
		log.Errorw("webhook event processing failed", "error", err)
		return err
	}

	s.Cache.Set(ctx, dedupeKey, true, webhookDedupeExpiry)
	return nil
}

func (s *webhookService) handlePaymentConfirmed(ctx context.Context, event *gateway.WebhookEvent) error {
	if event.Payment == nil || event.Payment.ID == "" {
		return ierr.NewError("payment event without payment payload").
			WithHint("Payment events must carry a payment object").
			Mark(ierr.ErrValidation)
	}

	sub, err := s.resolveByPayment(ctx, event.Payment)
	if err != nil {
		return err
	}
	return s.subscriptionService.ActivateFromPayment(ctx, sub.ID, event.Payment.ID)
}

func (s *webhookService) handleSubscriptionSync(ctx context.Context, event *gateway.WebhookEvent) error {
	if event.Subscription == nil || event.Subscription.ID == "" {
		return ierr.NewError("subscription event without subscription payload").
			WithHint("Subscription events must carry a subscription object").
			Mark(ierr.ErrValidation)
	}

	if event.Subscription.CustomerID == "" {
		return errNoGatewayIdentifier()
	}

	sub, err := s.SubRepo.GetByGatewayCustomerID(ctx, event.Subscription.CustomerID)
	if err != nil {
		return err
	}
	return s.subscriptionService.SyncGatewaySubscription(ctx, sub.ID, event.Subscription.ID)
}

func (s *webhookService) withPaymentSubscriber(ctx context.Context, event *gateway.WebhookEvent, fn func(ctx context.Context, subscriberID string) error) error {
	if event.Payment == nil {
		return ierr.NewError("payment event without payment payload").
			WithHint("Payment events must carry a payment object").
			Mark(ierr.ErrValidation)
	}

	sub, err := s.resolveByPayment(ctx, event.Payment)
	if err != nil {
		return err
	}
	return fn(ctx, sub.ID)
}

func (s *webhookService) withSubscriptionSubscriber(ctx context.Context, event *gateway.WebhookEvent, fn func(ctx context.Context, subscriberID string) error) error {
	if event.Subscription == nil {
		return ierr.NewError("subscription event without subscription payload").
			WithHint("Subscription events must carry a subscription object").
			Mark(ierr.ErrValidation)
	}

	if event.Subscription.ID == "" && event.Subscription.CustomerID == "" {
		return errNoGatewayIdentifier()
	}

	sub, err := s.lookupBySubscriptionThenCustomer(ctx, event.Subscription.ID, event.Subscription.CustomerID)
	if err != nil {
		return err
	}
	return fn(ctx, sub.ID)
}

// resolveByPayment correlates a payment payload to a subscriber: the billing
// agreement id is tried first, the gateway customer id second. Empty
// identifiers never match; subscribers who have not checked out yet carry
// empty gateway columns, so looking one up by '' would hit an unrelated row.
func (s *webhookService) resolveByPayment(ctx context.Context, payment *gateway.PaymentPayload) (*subscriber.Subscriber, error) {
	if payment.SubscriptionID == "" && payment.CustomerID == "" {
		return nil, errNoGatewayIdentifier()
	}
	return s.lookupBySubscriptionThenCustomer(ctx, payment.SubscriptionID, payment.CustomerID)
}

func (s *webhookService) lookupBySubscriptionThenCustomer(ctx context.Context, subscriptionID, customerID string) (*subscriber.Subscriber, error) {
	if subscriptionID != "" {
		sub, err := s.SubRepo.GetByGatewaySubscriptionID(ctx, subscriptionID)
		if err == nil {
			return sub, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}
	if customerID == "" {
		return nil, errNoGatewayIdentifier()
	}
	return s.SubRepo.GetByGatewayCustomerID(ctx, customerID)
}

// errNoGatewayIdentifier is marked not-found so the event is logged and
// dropped like any other unmatched delivery.
func errNoGatewayIdentifier() error {
	return ierr.NewError("event payload carried no gateway identifier").
		WithHint("No subscriber can match an empty gateway identifier").
		Mark(ierr.ErrNotFound)
}
