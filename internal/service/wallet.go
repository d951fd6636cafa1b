package service

import (
	"context"

	"github.com/clubpulse/clubpulse/internal/api/dto"
	"github.com/clubpulse/clubpulse/internal/domain/partner"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// WalletService exposes a subscriber's loyalty position: the global points
// balance and the per-partner cashback ledgers, plus standalone cashback
// redemption outside of a sale.
type WalletService interface {
	GetWallet(ctx context.Context, subscriberID string) (*dto.WalletResponse, error)
	GetCashbackSummary(ctx context.Context, subscriberID string) (*dto.CashbackSummaryResponse, error)
	RedeemCashback(ctx context.Context, subscriberID string, req *dto.RedeemCashbackRequest) (*dto.CashbackSummaryResponse, error)
}

type walletService struct {
	ServiceParams
}

func NewWalletService(params ServiceParams) WalletService {
	return &walletService{ServiceParams: params}
}

func (s *walletService) GetWallet(ctx context.Context, subscriberID string) (*dto.WalletResponse, error) {
	sub, err := s.SubRepo.GetByID(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	balances, err := s.CashbackRepo.ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	resp := &dto.WalletResponse{
		SubscriberID:     sub.ID,
		Points:           sub.Points,
		CashbackBalance:  decimal.Zero,
		CashbackIssued:   decimal.Zero,
		CashbackRedeemed: decimal.Zero,
		Balances:         make([]*dto.CashbackBalanceResponse, 0, len(balances)),
	}

	partnerNames, err := s.partnerNames(ctx)
	if err != nil {
		return nil, err
	}

	for _, b := range balances {
		resp.CashbackBalance = resp.CashbackBalance.Add(b.Balance)
		resp.CashbackIssued = resp.CashbackIssued.Add(b.TotalEarned)
		resp.CashbackRedeemed = resp.CashbackRedeemed.Add(b.TotalUsed)

		item := dto.NewCashbackBalanceResponse(b)
		item.PartnerName = partnerNames[b.PartnerID]
		resp.Balances = append(resp.Balances, item)
	}

	return resp, nil
}

func (s *walletService) GetCashbackSummary(ctx context.Context, subscriberID string) (*dto.CashbackSummaryResponse, error) {
	if _, err := s.SubRepo.GetByID(ctx, subscriberID); err != nil {
		return nil, err
	}

	balances, err := s.CashbackRepo.ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	partnerNames, err := s.partnerNames(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.CashbackSummaryResponse{
		SubscriberID: subscriberID,
		Balance:      decimal.Zero,
		TotalEarned:  decimal.Zero,
		TotalUsed:    decimal.Zero,
		Balances:     make([]*dto.CashbackBalanceResponse, 0, len(balances)),
	}
	for _, b := range balances {
		resp.Balance = resp.Balance.Add(b.Balance)
		resp.TotalEarned = resp.TotalEarned.Add(b.TotalEarned)
		resp.TotalUsed = resp.TotalUsed.Add(b.TotalUsed)

		item := dto.NewCashbackBalanceResponse(b)
		item.PartnerName = partnerNames[b.PartnerID]
		resp.Balances = append(resp.Balances, item)
	}

	return resp, nil
}

func (s *walletService) RedeemCashback(ctx context.Context, subscriberID string, req *dto.RedeemCashbackRequest) (*dto.CashbackSummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.SubRepo.GetByIDForUpdate(ctx, subscriberID); err != nil {
			return err
		}
		return s.CashbackRepo.Redeem(ctx, subscriberID, req.PartnerID, req.Amount)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("cashback redeemed",
		"subscriber_id", subscriberID,
		"partner_id", req.PartnerID,
		"amount", req.Amount,
	)

	return s.GetCashbackSummary(ctx, subscriberID)
}

func (s *walletService) partnerNames(ctx context.Context) (map[string]string, error) {
	partners, err := s.PartnerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(partners, func(p *partner.Partner) (string, string) {
		return p.ID, p.Name
	}), nil
}
