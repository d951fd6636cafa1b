package service

import (
	"github.com/clubpulse/clubpulse/internal/cache"
	"github.com/clubpulse/clubpulse/internal/config"
	"github.com/clubpulse/clubpulse/internal/domain/cashback"
	"github.com/clubpulse/clubpulse/internal/domain/partner"
	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/settlement"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	"github.com/clubpulse/clubpulse/internal/gateway"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
)

// ServiceParams bundles common dependencies passed to every service. Any
// service can pick the repositories it needs without each constructor growing
// its own parameter list.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	GatewayClient gateway.Client

	SubRepo         subscriber.Repository
	PlanRepo        plan.Repository
	PartnerRepo     partner.Repository
	CashbackRepo    cashback.Repository
	TransactionRepo settlement.Repository
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	gatewayClient gateway.Client,
	subRepo subscriber.Repository,
	planRepo plan.Repository,
	partnerRepo partner.Repository,
	cashbackRepo cashback.Repository,
	transactionRepo settlement.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		DB:              db,
		Cache:           cache,
		GatewayClient:   gatewayClient,
		SubRepo:         subRepo,
		PlanRepo:        planRepo,
		PartnerRepo:     partnerRepo,
		CashbackRepo:    cashbackRepo,
		TransactionRepo: transactionRepo,
	}
}
