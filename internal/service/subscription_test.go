package service

import (
	"testing"
	"time"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/testutil"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewSubscriptionService(ServiceParams{
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
	})

	s.seed()
}

func (s *SubscriptionServiceSuite) seed() {
	ctx := s.GetContext()
	plans := s.GetStores().PlanRepo.(*testutil.InMemoryPlanStore)

	s.Require().NoError(plans.Add(ctx, &plan.Plan{
		ID:        "plan_free",
		Name:      "Community",
		Price:     decimal.Zero,
		Period:    types.PlanPeriodMonthly,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))
	s.Require().NoError(plans.Add(ctx, &plan.Plan{
		ID:        "plan_gold",
		Name:      "Gold",
		Price:     decimal.NewFromInt(30),
		Period:    types.PlanPeriodMonthly,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))

	s.Require().NoError(s.GetStores().SubRepo.Create(ctx, &subscriber.Subscriber{
		ID:                 "sub_joao",
		Name:               "Joao",
		Email:              "joao@example.com",
		Document:           "12345678900",
		SubscriptionStatus: types.SubscriptionStatusPending,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}))
}

func (s *SubscriptionServiceSuite) TestCheckoutFreePlanActivates() {
	ctx := s.GetContext()

	resp, err := s.service.Checkout(ctx, &dto.CheckoutRequest{
		SubscriberID: "sub_joao",
		PlanID:       "plan_free",
	})
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)

	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
	s.Require().NotNil(sub.PlanID)
	s.Equal("plan_free", *sub.PlanID)
	// Free enrollments never expire
	s.Nil(sub.PlanEndDate)

	// No gateway traffic for a free plan
	s.Empty(s.GetGatewayClient().Customers)
	s.Empty(s.GetGatewayClient().Subscriptions)
}

func (s *SubscriptionServiceSuite) TestCheckoutPaidPlanOpensAgreement() {
	ctx := s.GetContext()

	resp, err := s.service.Checkout(ctx, &dto.CheckoutRequest{
		SubscriberID: "sub_joao",
		PlanID:       "plan_gold",
	})
	s.Require().NoError(err)

	// Status untouched until the payment webhook lands
	s.Equal(types.SubscriptionStatusPending, resp.SubscriptionStatus)
	s.NotEmpty(resp.GatewaySubscriptionID)
	s.NotEmpty(resp.InvoiceURL)

	gw := s.GetGatewayClient()
	s.Require().Len(gw.Customers, 1)
	s.Equal("joao@example.com", gw.Customers[0].Email)
	s.Require().Len(gw.Subscriptions, 1)
	s.True(gw.Subscriptions[0].Value.Equal(decimal.NewFromInt(30)))
	s.Equal("MONTHLY", gw.Subscriptions[0].Cycle)

	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.NotEmpty(sub.GatewayCustomerID)
	s.Equal(resp.GatewaySubscriptionID, sub.GatewaySubscriptionID)
	s.Equal(types.SubscriptionStatusPending, sub.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestCheckoutPaidReusesGatewayCustomer() {
	ctx := s.GetContext()

	_, err := s.service.Checkout(ctx, &dto.CheckoutRequest{SubscriberID: "sub_joao", PlanID: "plan_gold"})
	s.Require().NoError(err)
	_, err = s.service.Checkout(ctx, &dto.CheckoutRequest{SubscriberID: "sub_joao", PlanID: "plan_gold"})
	s.Require().NoError(err)

	s.Len(s.GetGatewayClient().Customers, 1)
	s.Len(s.GetGatewayClient().Subscriptions, 2)
}

func (s *SubscriptionServiceSuite) TestCheckoutGatewayUnreachable() {
	s.GetGatewayClient().Fail = true

	_, err := s.service.Checkout(s.GetContext(), &dto.CheckoutRequest{
		SubscriberID: "sub_joao",
		PlanID:       "plan_gold",
	})
	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))
}

func (s *SubscriptionServiceSuite) TestActivateFromPaymentIsIdempotent() {
	ctx := s.GetContext()

	_, err := s.service.Checkout(ctx, &dto.CheckoutRequest{SubscriberID: "sub_joao", PlanID: "plan_gold"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.ActivateFromPayment(ctx, "sub_joao", "pay_001"))

	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
	s.Equal("pay_001", sub.LastPaymentID)
	s.Require().NotNil(sub.PlanEndDate)
	firstEnd := *sub.PlanEndDate

	// Re-delivery of the same payment leaves the window untouched
	s.Require().NoError(s.service.ActivateFromPayment(ctx, "sub_joao", "pay_001"))
	sub, err = s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.True(firstEnd.Equal(*sub.PlanEndDate))

	// A new payment id is a renewal and extends the window
	s.Require().NoError(s.service.ActivateFromPayment(ctx, "sub_joao", "pay_002"))
	sub, err = s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal("pay_002", sub.LastPaymentID)
	s.True(sub.PlanEndDate.After(firstEnd))
}

func (s *SubscriptionServiceSuite) TestActivateReactivatesSuspended() {
	ctx := s.GetContext()

	_, err := s.service.Checkout(ctx, &dto.CheckoutRequest{SubscriberID: "sub_joao", PlanID: "plan_gold"})
	s.Require().NoError(err)
	s.Require().NoError(s.service.ActivateFromPayment(ctx, "sub_joao", "pay_001"))
	s.Require().NoError(s.service.Suspend(ctx, "sub_joao"))

	s.Require().NoError(s.service.ActivateFromPayment(ctx, "sub_joao", "pay_002"))

	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestActivateWithoutPlanRejected() {
	err := s.service.ActivateFromPayment(s.GetContext(), "sub_joao", "pay_001")
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestSuspendOnlyAffectsActive() {
	ctx := s.GetContext()

	// PENDING enrollment: suspend is a logged no-op
	s.Require().NoError(s.service.Suspend(ctx, "sub_joao"))
	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusPending, sub.SubscriptionStatus)

	_, err = s.service.Checkout(ctx, &dto.CheckoutRequest{SubscriberID: "sub_joao", PlanID: "plan_gold"})
	s.Require().NoError(err)
	s.Require().NoError(s.service.ActivateFromPayment(ctx, "sub_joao", "pay_001"))

	s.Require().NoError(s.service.Suspend(ctx, "sub_joao"))
	sub, err = s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusSuspended, sub.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestMarkCanceledOnlyIfActive() {
	ctx := s.GetContext()

	// Refund semantics never cancel a PENDING enrollment
	s.Require().NoError(s.service.MarkCanceled(ctx, "sub_joao", true))
	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusPending, sub.SubscriptionStatus)

	// Gateway-deletion semantics cancel it
	s.Require().NoError(s.service.MarkCanceled(ctx, "sub_joao", false))
	sub, err = s.GetStores().SubRepo.GetByID(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, sub.SubscriptionStatus)

	// Canceling again is a no-op
	s.Require().NoError(s.service.MarkCanceled(ctx, "sub_joao", false))
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionClosesAgreement() {
	ctx := s.GetContext()

	_, err := s.service.Checkout(ctx, &dto.CheckoutRequest{SubscriberID: "sub_joao", PlanID: "plan_gold"})
	s.Require().NoError(err)
	s.Require().NoError(s.service.ActivateFromPayment(ctx, "sub_joao", "pay_001"))

	resp, err := s.service.CancelSubscription(ctx, "sub_joao")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCanceled, resp.Status)
	s.Len(s.GetGatewayClient().Cancellations, 1)
}

func (s *SubscriptionServiceSuite) TestGetSubscriptionEffectiveStatus() {
	ctx := s.GetContext()

	planID := "plan_gold"
	past := time.Now().UTC().Add(-time.Hour)
	start := past.AddDate(0, -1, 0)
	s.Require().NoError(s.GetStores().SubRepo.Create(ctx, &subscriber.Subscriber{
		ID:                 "sub_lapsed",
		Name:               "Lapsed",
		Email:              "lapsed@example.com",
		SubscriptionStatus: types.SubscriptionStatusActive,
		PlanID:             &planID,
		PlanStartDate:      &start,
		PlanEndDate:        &past,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}))

	resp, err := s.service.GetSubscription(ctx, "sub_lapsed")
	s.Require().NoError(err)
	// Persisted status lags; the effective view already reads EXPIRED
	s.Equal(types.SubscriptionStatusActive, resp.Status)
	s.Equal(types.SubscriptionStatusExpired, resp.EffectiveStatus)
}

func (s *SubscriptionServiceSuite) TestExpireDueSubscriptions() {
	ctx := s.GetContext()

	planID := "plan_gold"
	past := time.Now().UTC().Add(-time.Hour)
	start := past.AddDate(0, -1, 0)
	s.Require().NoError(s.GetStores().SubRepo.Create(ctx, &subscriber.Subscriber{
		ID:                 "sub_lapsed",
		Name:               "Lapsed",
		Email:              "lapsed@example.com",
		SubscriptionStatus: types.SubscriptionStatusActive,
		PlanID:             &planID,
		PlanStartDate:      &start,
		PlanEndDate:        &past,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}))

	expired, err := s.service.ExpireDueSubscriptions(ctx)
	s.Require().NoError(err)
	s.Equal(1, expired)

	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_lapsed")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusExpired, sub.SubscriptionStatus)

	// The sweep is idempotent
	expired, err = s.service.ExpireDueSubscriptions(ctx)
	s.Require().NoError(err)
	s.Equal(0, expired)
}
