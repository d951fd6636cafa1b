package service

import (
	"testing"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	"github.com/clubpulse/clubpulse/internal/gateway"
	"github.com/clubpulse/clubpulse/internal/testutil"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service             WebhookService
	subscriptionService SubscriptionService
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		Cache:           s.GetCache(),
		GatewayClient:   s.GetGatewayClient(),
		SubRepo:         stores.SubRepo,
		PlanRepo:        stores.PlanRepo,
		PartnerRepo:     stores.PartnerRepo,
		CashbackRepo:    stores.CashbackRepo,
		TransactionRepo: stores.TransactionRepo,
	}
	s.subscriptionService = NewSubscriptionService(params)
	s.service = NewWebhookService(params, s.subscriptionService)

	s.seed()
}

func (s *WebhookServiceSuite) seed() {
	ctx := s.GetContext()

	s.Require().NoError(s.GetStores().PlanRepo.(*testutil.InMemoryPlanStore).Add(ctx, &plan.Plan{
		ID:        "plan_gold",
		Name:      "Gold",
		Price:     decimal.NewFromInt(30),
		Period:    types.PlanPeriodMonthly,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))

	planID := "plan_gold"
	s.Require().NoError(s.GetStores().SubRepo.Create(ctx, &subscriber.Subscriber{
		ID:                    "sub_ana",
		Name:                  "Ana",
		Email:                 "ana@example.com",
		SubscriptionStatus:    types.SubscriptionStatusPending,
		PlanID:                &planID,
		GatewayCustomerID:     "cus_ana",
		GatewaySubscriptionID: "gwsub_ana",
		BaseModel:             types.GetDefaultBaseModel(ctx),
	}))
}

func paymentEvent(event gateway.EventType, paymentID string) *gateway.WebhookEvent {
	return &gateway.WebhookEvent{
		Event: event,
		Payment: &gateway.PaymentPayload{
			ID:             paymentID,
			CustomerID:     "cus_ana",
			SubscriptionID: "gwsub_ana",
			Value:          decimal.NewFromInt(30),
		},
	}
}

func (s *WebhookServiceSuite) getAna() *subscriber.Subscriber {
	sub, err := s.GetStores().SubRepo.GetByID(s.GetContext(), "sub_ana")
	s.Require().NoError(err)
	return sub
}

func (s *WebhookServiceSuite) TestPaymentConfirmedActivates() {
	err := s.service.HandleEvent(s.GetContext(), paymentEvent(gateway.EventPaymentConfirmed, "pay_001"))
	s.Require().NoError(err)

	sub := s.getAna()
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
	s.Equal("pay_001", sub.LastPaymentID)
	s.Require().NotNil(sub.PlanEndDate)
	s.True(sub.PlanEndDate.After(time.Now().UTC()))
}

func (s *WebhookServiceSuite) TestPaymentReceivedActivates() {
	err := s.service.HandleEvent(s.GetContext(), paymentEvent(gateway.EventPaymentReceived, "pay_001"))
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, s.getAna().SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestDuplicateDeliveryDoesNotExtendWindow() {
	ctx := s.GetContext()

	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentConfirmed, "pay_001")))
	firstEnd := *s.getAna().PlanEndDate

	// Same payment id re-delivered: the validity window must not move
	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentConfirmed, "pay_001")))
	s.True(firstEnd.Equal(*s.getAna().PlanEndDate))
}

func (s *WebhookServiceSuite) TestPaymentOverdueSuspendsOnlyActive() {
	ctx := s.GetContext()

	// Overdue against a PENDING enrollment changes nothing
	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentOverdue, "pay_001")))
	s.Equal(types.SubscriptionStatusPending, s.getAna().SubscriptionStatus)

	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentConfirmed, "pay_002")))
	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentOverdue, "pay_003")))
	s.Equal(types.SubscriptionStatusSuspended, s.getAna().SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestPaymentRefundedCancelsOnlyActive() {
	ctx := s.GetContext()

	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentRefunded, "pay_001")))
	s.Equal(types.SubscriptionStatusPending, s.getAna().SubscriptionStatus)

	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentConfirmed, "pay_002")))
	s.Require().NoError(s.service.HandleEvent(ctx, paymentEvent(gateway.EventPaymentRefunded, "pay_003")))
	s.Equal(types.SubscriptionStatusCanceled, s.getAna().SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestSubscriptionDeletedCancels() {
	err := s.service.HandleEvent(s.GetContext(), &gateway.WebhookEvent{
		Event: gateway.EventSubscriptionDeleted,
		Subscription: &gateway.SubscriptionPayload{
			ID:         "gwsub_ana",
			CustomerID: "cus_ana",
		},
	})
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, s.getAna().SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestSubscriptionDeletedUnknownIDIsDropped() {
	// Unknown gateway identifiers ack cleanly and mutate nothing
	err := s.service.HandleEvent(s.GetContext(), &gateway.WebhookEvent{
		Event: gateway.EventSubscriptionDeleted,
		Subscription: &gateway.SubscriptionPayload{
			ID:         "gwsub_stranger",
			CustomerID: "cus_stranger",
		},
	})
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusPending, s.getAna().SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestSubscriptionCreatedSyncsAgreementID() {
	ctx := s.GetContext()

	err := s.service.HandleEvent(ctx, &gateway.WebhookEvent{
		Event: gateway.EventSubscriptionCreated,
		Subscription: &gateway.SubscriptionPayload{
			ID:         "gwsub_new",
			CustomerID: "cus_ana",
		},
	})
	s.Require().NoError(err)
	s.Equal("gwsub_new", s.getAna().GatewaySubscriptionID)
}

func (s *WebhookServiceSuite) TestEmptyGatewayIdentifiersNeverMatch() {
	ctx := s.GetContext()

	// A member on a free plan never checked out, so the gateway columns hold
	// their empty defaults. A payload with an empty customer id must not
	// correlate to that row.
	s.Require().NoError(s.GetStores().SubRepo.Create(ctx, &subscriber.Subscriber{
		ID:                 "sub_free",
		Name:               "Leo",
		Email:              "leo@example.com",
		SubscriptionStatus: types.SubscriptionStatusActive,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}))

	event := paymentEvent(gateway.EventPaymentOverdue, "pay_foreign")
	event.Payment.CustomerID = ""
	event.Payment.SubscriptionID = ""
	s.Require().NoError(s.service.HandleEvent(ctx, event))

	free, err := s.GetStores().SubRepo.GetByID(ctx, "sub_free")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, free.SubscriptionStatus)
	s.Equal(types.SubscriptionStatusPending, s.getAna().SubscriptionStatus)

	confirm := paymentEvent(gateway.EventPaymentConfirmed, "pay_foreign_2")
	confirm.Payment.CustomerID = ""
	confirm.Payment.SubscriptionID = ""
	s.Require().NoError(s.service.HandleEvent(ctx, confirm))
	s.Equal(types.SubscriptionStatusPending, s.getAna().SubscriptionStatus)

	s.Require().NoError(s.service.HandleEvent(ctx, &gateway.WebhookEvent{
		Event:        gateway.EventSubscriptionDeleted,
		Subscription: &gateway.SubscriptionPayload{},
	}))
	free, err = s.GetStores().SubRepo.GetByID(ctx, "sub_free")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, free.SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestPaymentCreatedIsInformational() {
	err := s.service.HandleEvent(s.GetContext(), paymentEvent(gateway.EventPaymentCreated, "pay_001"))
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusPending, s.getAna().SubscriptionStatus)
}

func (s *WebhookServiceSuite) TestUnknownEventTypeIgnored() {
	err := s.service.HandleEvent(s.GetContext(), &gateway.WebhookEvent{
		Event: gateway.EventType("PAYMENT_CHARGEBACK_REQUESTED"),
	})
	s.Require().NoError(err)
}

func (s *WebhookServiceSuite) TestEmptyEventRejected() {
	s.Require().Error(s.service.HandleEvent(s.GetContext(), &gateway.WebhookEvent{}))
	s.Require().Error(s.service.HandleEvent(s.GetContext(), nil))
}
