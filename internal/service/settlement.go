package service

import (
	"context"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	"github.com/clubpulse/clubpulse/internal/domain/settlement"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

// SettlementService quotes and commits sale settlements at partner terminals.
// Preview is read-only; Commit applies the transaction and every ledger delta
// in one unit of work, serialized per subscriber by a row lock.
type SettlementService interface {
	Preview(ctx context.Context, req *dto.SettlementRequest) (*dto.SettlementPreviewResponse, error)
	Commit(ctx context.Context, req *dto.SettlementRequest) (*dto.SettlementResponse, error)
	Get(ctx context.Context, id string) (*dto.SettlementResponse, error)
	Cancel(ctx context.Context, id string) (*dto.SettlementResponse, error)
	ListBySubscriber(ctx context.Context, subscriberID string) (*dto.ListSettlementsResponse, error)
	ListByPartner(ctx context.Context, partnerID string) (*dto.ListSettlementsResponse, error)
}

type settlementService struct {
	ServiceParams
}

func NewSettlementService(params ServiceParams) SettlementService {
	return &settlementService{ServiceParams: params}
}

func (s *settlementService) Preview(ctx context.Context, req *dto.SettlementRequest) (*dto.SettlementPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	input, err := s.buildInput(ctx, req, false)
	if err != nil {
		return nil, err
	}

	result, err := settlement.Calculate(*input)
	if err != nil {
		return nil, err
	}

	return dto.NewSettlementPreviewResponse(req, result), nil
}

func (s *settlementService) Commit(ctx context.Context, req *dto.SettlementRequest) (*dto.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var txn *settlement.Transaction
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		input, err := s.buildInput(ctx, req, true)
		if err != nil {
			return err
		}

		result, err := settlement.Calculate(*input)
		if err != nil {
			return err
		}

		// Ledger debits go first so an insufficient balance aborts before
		// anything is written.
		if result.PointsApplied.GreaterThan(decimal.Zero) {
			if err := s.SubRepo.DebitPoints(ctx, req.SubscriberID, result.PointsApplied); err != nil {
				return err
			}
		}
		if result.CashbackApplied.GreaterThan(decimal.Zero) {
			if err := s.CashbackRepo.Redeem(ctx, req.SubscriberID, req.PartnerID, result.CashbackApplied); err != nil {
				return err
			}
		}

		txn = &settlement.Transaction{
			ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
			Code:              types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_SETTLEMENT),
			SubscriberID:      req.SubscriberID,
			PartnerID:         req.PartnerID,
			Amount:            req.Amount,
			DiscountApplied:   result.DiscountAmount,
			PointsUsed:        result.PointsApplied,
			PointsEarned:      result.PointsEarned,
			CashbackUsed:      result.CashbackApplied,
			CashbackGenerated: result.CashbackGenerated,
			FinalAmount:       result.FinalAmount,
			Status:            types.TransactionStatusCompleted,
			Metadata:          req.Metadata,
			BaseModel:         types.GetDefaultBaseModel(ctx),
		}
		if err := txn.Validate(); err != nil {
			return err
		}
		if err := s.TransactionRepo.Create(ctx, txn); err != nil {
			return err
		}

		// Accruals earned on the amount actually paid
		if result.PointsEarned.GreaterThan(decimal.Zero) {
			if err := s.SubRepo.CreditPoints(ctx, req.SubscriberID, result.PointsEarned); err != nil {
				return err
			}
		}
		if result.CashbackGenerated.GreaterThan(decimal.Zero) {
			if err := s.CashbackRepo.Accrue(ctx, req.SubscriberID, req.PartnerID, result.CashbackGenerated); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("settlement committed",
		"transaction_id", txn.ID,
		"code", txn.Code,
		"subscriber_id", txn.SubscriberID,
		"partner_id", txn.PartnerID,
		"final_amount", txn.FinalAmount,
	)

	return dto.NewSettlementResponse(txn), nil
}

func (s *settlementService) Get(ctx context.Context, id string) (*dto.SettlementResponse, error) {
	txn, err := s.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSettlementResponse(txn), nil
}

// Cancel reverses a committed settlement: spent points and cashback return to
// the subscriber, earned points and generated cashback are clawed back. The
// claw-back can legitimately fail when the subscriber already spent what this
// sale earned; the whole reversal aborts in that case.
func (s *settlementService) Cancel(ctx context.Context, id string) (*dto.SettlementResponse, error) {
	var txn *settlement.Transaction
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.TransactionRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if txn.Status != types.TransactionStatusCompleted {
			return ierr.NewError("transaction is not cancellable").
				WithHint("Only completed transactions can be canceled").
				WithReportableDetails(map[string]any{
					"transaction_id": txn.ID,
					"status":         txn.Status,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		if _, err := s.SubRepo.GetByIDForUpdate(ctx, txn.SubscriberID); err != nil {
			return err
		}

		if txn.PointsEarned.GreaterThan(decimal.Zero) {
			if err := s.SubRepo.DebitPoints(ctx, txn.SubscriberID, txn.PointsEarned); err != nil {
				return err
			}
		}
		if txn.CashbackGenerated.GreaterThan(decimal.Zero) {
			if err := s.CashbackRepo.Redeem(ctx, txn.SubscriberID, txn.PartnerID, txn.CashbackGenerated); err != nil {
				return err
			}
		}
		if txn.PointsUsed.GreaterThan(decimal.Zero) {
			if err := s.SubRepo.CreditPoints(ctx, txn.SubscriberID, txn.PointsUsed); err != nil {
				return err
			}
		}
		if txn.CashbackUsed.GreaterThan(decimal.Zero) {
			if err := s.CashbackRepo.Accrue(ctx, txn.SubscriberID, txn.PartnerID, txn.CashbackUsed); err != nil {
				return err
			}
		}

		txn.Status = types.TransactionStatusCanceled
		return s.TransactionRepo.UpdateStatus(ctx, txn.ID, types.TransactionStatusCanceled)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("settlement canceled",
		"transaction_id", txn.ID,
		"subscriber_id", txn.SubscriberID,
	)

	return dto.NewSettlementResponse(txn), nil
}

func (s *settlementService) ListBySubscriber(ctx context.Context, subscriberID string) (*dto.ListSettlementsResponse, error) {
	txns, err := s.TransactionRepo.ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	return dto.NewListSettlementsResponse(txns), nil
}

func (s *settlementService) ListByPartner(ctx context.Context, partnerID string) (*dto.ListSettlementsResponse, error) {
	txns, err := s.TransactionRepo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return dto.NewListSettlementsResponse(txns), nil
}

// buildInput assembles the calculator input. forUpdate locks the subscriber
// row so commit-time reads and ledger writes serialize per subscriber.
func (s *settlementService) buildInput(ctx context.Context, req *dto.SettlementRequest, forUpdate bool) (*settlement.CalculationInput, error) {
	get := s.SubRepo.GetByID
	if forUpdate {
		get = s.SubRepo.GetByIDForUpdate
	}

	subscriberRec, err := get(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	partnerRec, err := s.PartnerRepo.GetByID(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if !partnerRec.Active {
		return nil, ierr.NewError("partner is not active").
			WithHint("Settlements are only accepted at active partners").
			WithReportableDetails(map[string]any{
				"partner_id": partnerRec.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	input := &settlement.CalculationInput{
		Subscriber:    subscriberRec,
		SaleAmount:    req.Amount,
		UsePoints:     req.UsePoints,
		PointsToUse:   req.PointsToUse,
		UseCashback:   req.UseCashback,
		CashbackToUse: req.CashbackToUse,
	}

	if subscriberRec.PlanID != nil {
		planRec, err := s.PlanRepo.GetByID(ctx, *subscriberRec.PlanID)
		if err != nil {
			return nil, err
		}
		input.Plan = planRec
	}

	if req.UseCashback {
		balance, err := s.CashbackRepo.Get(ctx, req.SubscriberID, req.PartnerID)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
		if balance != nil {
			input.CashbackAvailable = balance.Balance
		}
	}

	return input, nil
}
