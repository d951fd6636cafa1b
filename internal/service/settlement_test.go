package service

import (
	"context"
	"testing"
	"time"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	"github.com/clubpulse/clubpulse/internal/domain/partner"
	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/testutil"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SettlementServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SettlementService
	params  ServiceParams
}

func TestSettlementService(t *testing.T) {
	suite.Run(t, new(SettlementServiceSuite))
}

func (s *SettlementServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.params = ServiceParams{
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
	s.service = NewSettlementService(s.params)

	s.seed()
}

func (s *SettlementServiceSuite) seed() {
	ctx := s.GetContext()

	p := &plan.Plan{
		ID:     "plan_gold",
		Name:   "Gold",
		Price:  decimal.NewFromInt(30),
		Period: types.PlanPeriodMonthly,
		Benefits: []*plan.Benefit{
			{PlanID: "plan_gold", Type: types.BenefitTypeDiscount, Percentage: decimal.NewFromInt(10), Position: 1},
			{PlanID: "plan_gold", Type: types.BenefitTypeCashback, Percentage: decimal.NewFromInt(5), Position: 2},
			{PlanID: "plan_gold", Type: types.BenefitTypePoints, Multiplier: decimal.NewFromInt(1), Position: 3},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.Require().NoError(s.GetStores().PlanRepo.(*testutil.InMemoryPlanStore).Add(ctx, p))

	s.Require().NoError(s.GetStores().PartnerRepo.(*testutil.InMemoryPartnerStore).Add(ctx, &partner.Partner{
		ID:        "ptnr_cafe",
		Name:      "Corner Cafe",
		Active:    true,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))
	s.Require().NoError(s.GetStores().PartnerRepo.(*testutil.InMemoryPartnerStore).Add(ctx, &partner.Partner{
		ID:        "ptnr_closed",
		Name:      "Closed Shop",
		Active:    false,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))

	planID := "plan_gold"
	end := time.Now().UTC().Add(15 * 24 * time.Hour)
	start := time.Now().UTC().Add(-15 * 24 * time.Hour)
	s.Require().NoError(s.GetStores().SubRepo.Create(ctx, &subscriber.Subscriber{
		ID:                 "sub_maria",
		Name:               "Maria",
		Email:              "maria@example.com",
		Points:             decimal.NewFromInt(40),
		SubscriptionStatus: types.SubscriptionStatusActive,
		PlanID:             &planID,
		PlanStartDate:      &start,
		PlanEndDate:        &end,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}))
}

func (s *SettlementServiceSuite) TestPreviewDoesNotMutate() {
	ctx := s.GetContext()

	resp, err := s.service.Preview(ctx, &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_cafe",
		Amount:       decimal.NewFromInt(100),
		UsePoints:    true,
		PointsToUse:  decimal.NewFromInt(20),
	})
	s.Require().NoError(err)

	s.True(resp.DiscountAmount.Equal(decimal.NewFromInt(10)))
	s.True(resp.PointsApplied.Equal(decimal.NewFromInt(20)))
	s.True(resp.FinalAmount.Equal(decimal.NewFromInt(70)))

	// Nothing is persisted on preview
	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_maria")
	s.Require().NoError(err)
	s.True(sub.Points.Equal(decimal.NewFromInt(40)))

	txns, err := s.GetStores().TransactionRepo.ListBySubscriber(ctx, "sub_maria")
	s.Require().NoError(err)
	s.Empty(txns)
}

func (s *SettlementServiceSuite) TestCommitAppliesLedgers() {
	ctx := s.GetContext()

	resp, err := s.service.Commit(ctx, &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_cafe",
		Amount:       decimal.NewFromInt(100),
		UsePoints:    true,
		PointsToUse:  decimal.NewFromInt(20),
	})
	s.Require().NoError(err)

	s.Equal(types.TransactionStatusCompleted, resp.Status)
	s.NotEmpty(resp.Code)
	s.True(resp.FinalAmount.Equal(decimal.NewFromInt(70)))
	s.True(resp.CashbackGenerated.Equal(decimal.RequireFromString("3.5")))
	s.True(resp.PointsEarned.Equal(decimal.NewFromInt(70)))

	// Points: 40 - 20 used + 70 earned
	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_maria")
	s.Require().NoError(err)
	s.True(sub.Points.Equal(decimal.NewFromInt(90)), "points: %s", sub.Points)

	balance, err := s.GetStores().CashbackRepo.Get(ctx, "sub_maria", "ptnr_cafe")
	s.Require().NoError(err)
	s.True(balance.Balance.Equal(decimal.RequireFromString("3.5")))
	s.Require().NoError(balance.Validate())
}

func (s *SettlementServiceSuite) TestCommitRedeemsCashback() {
	ctx := s.GetContext()
	s.Require().NoError(s.GetStores().CashbackRepo.Accrue(ctx, "sub_maria", "ptnr_cafe", decimal.NewFromInt(25)))

	resp, err := s.service.Commit(ctx, &dto.SettlementRequest{
		SubscriberID:  "sub_maria",
		PartnerID:     "ptnr_cafe",
		Amount:        decimal.NewFromInt(50),
		UseCashback:   true,
		CashbackToUse: decimal.NewFromInt(25),
	})
	s.Require().NoError(err)

	// 50 - 5 discount - 25 cashback = 20 final
	s.True(resp.CashbackUsed.Equal(decimal.NewFromInt(25)))
	s.True(resp.FinalAmount.Equal(decimal.NewFromInt(20)))

	balance, err := s.GetStores().CashbackRepo.Get(ctx, "sub_maria", "ptnr_cafe")
	s.Require().NoError(err)
	s.Require().NoError(balance.Validate())
	s.True(balance.TotalUsed.Equal(decimal.NewFromInt(25)))
	// 25 accrued - 25 used + 1 generated on the 20 paid
	s.True(balance.Balance.Equal(decimal.NewFromInt(1)), "balance: %s", balance.Balance)
}

func (s *SettlementServiceSuite) TestCommitLedgerFailureWritesNothing() {
	ctx := s.GetContext()

	params := s.params
	params.SubRepo = &failingDebitRepo{Repository: params.SubRepo}
	svc := NewSettlementService(params)

	_, err := svc.Commit(ctx, &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_cafe",
		Amount:       decimal.NewFromInt(100),
		UsePoints:    true,
		PointsToUse:  decimal.NewFromInt(10),
	})
	s.Require().Error(err)

	// The aborted commit leaves no transaction and no cashback behind
	txns, err := s.GetStores().TransactionRepo.ListBySubscriber(ctx, "sub_maria")
	s.Require().NoError(err)
	s.Empty(txns)

	_, err = s.GetStores().CashbackRepo.Get(ctx, "sub_maria", "ptnr_cafe")
	s.True(ierr.IsNotFound(err))
}

func (s *SettlementServiceSuite) TestCommitInactiveSubscriber() {
	ctx := s.GetContext()

	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_maria")
	s.Require().NoError(err)
	sub.SubscriptionStatus = types.SubscriptionStatusSuspended
	s.Require().NoError(s.GetStores().SubRepo.Update(ctx, sub))

	_, err = s.service.Commit(ctx, &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_cafe",
		Amount:       decimal.NewFromInt(10),
	})
	s.Require().Error(err)
	s.True(ierr.IsInactiveSubscription(err))
}

func (s *SettlementServiceSuite) TestCommitInactivePartner() {
	_, err := s.service.Commit(s.GetContext(), &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_closed",
		Amount:       decimal.NewFromInt(10),
	})
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SettlementServiceSuite) TestCancelRestoresLedgers() {
	ctx := s.GetContext()

	resp, err := s.service.Commit(ctx, &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_cafe",
		Amount:       decimal.NewFromInt(100),
		UsePoints:    true,
		PointsToUse:  decimal.NewFromInt(20),
	})
	s.Require().NoError(err)

	canceled, err := s.service.Cancel(ctx, resp.ID)
	s.Require().NoError(err)
	s.Equal(types.TransactionStatusCanceled, canceled.Status)

	// Points and cashback back at the pre-sale position
	sub, err := s.GetStores().SubRepo.GetByID(ctx, "sub_maria")
	s.Require().NoError(err)
	s.True(sub.Points.Equal(decimal.NewFromInt(40)), "points: %s", sub.Points)

	balance, err := s.GetStores().CashbackRepo.Get(ctx, "sub_maria", "ptnr_cafe")
	s.Require().NoError(err)
	s.Require().NoError(balance.Validate())
	s.True(balance.Balance.IsZero())

	// A second cancel is rejected
	_, err = s.service.Cancel(ctx, resp.ID)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SettlementServiceSuite) TestCommitRecordsMetadata() {
	ctx := s.GetContext()

	resp, err := s.service.Commit(ctx, &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_cafe",
		Amount:       decimal.NewFromInt(12),
		Metadata:     types.Metadata{"terminal_id": "pos-07", "receipt": "r-3391"},
	})
	s.Require().NoError(err)

	got, err := s.service.Get(ctx, resp.ID)
	s.Require().NoError(err)
	s.Equal("pos-07", got.Metadata["terminal_id"])
	s.Equal("r-3391", got.Metadata["receipt"])
}

func (s *SettlementServiceSuite) TestGetSettlement() {
	ctx := s.GetContext()

	resp, err := s.service.Commit(ctx, &dto.SettlementRequest{
		SubscriberID: "sub_maria",
		PartnerID:    "ptnr_cafe",
		Amount:       decimal.NewFromInt(42),
	})
	s.Require().NoError(err)

	got, err := s.service.Get(ctx, resp.ID)
	s.Require().NoError(err)
	s.Equal(resp.ID, got.ID)
	s.True(got.Amount.Equal(decimal.NewFromInt(42)))

	_, err = s.service.Get(ctx, "txn_missing")
	s.True(ierr.IsNotFound(err))
}

// failingDebitRepo simulates a ledger write failure inside the commit
type failingDebitRepo struct {
	subscriber.Repository
}

func (r *failingDebitRepo) DebitPoints(ctx context.Context, id string, amount decimal.Decimal) error {
	return ierr.NewError("debit failed").
		WithHint("Failed to debit points").
		Mark(ierr.ErrDatabase)
}
