package repository

import (
	"github.com/clubpulse/clubpulse/internal/domain/cashback"
	"github.com/clubpulse/clubpulse/internal/domain/partner"
	"github.com/clubpulse/clubpulse/internal/domain/plan"
	"github.com/clubpulse/clubpulse/internal/domain/settlement"
	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
	postgresRepo "github.com/clubpulse/clubpulse/internal/repository/postgres"
)

func NewSubscriberRepository(db *postgres.DB, logger *logger.Logger) subscriber.Repository {
	return postgresRepo.NewSubscriberRepository(db, logger)
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewPartnerRepository(db *postgres.DB, logger *logger.Logger) partner.Repository {
	return postgresRepo.NewPartnerRepository(db, logger)
}

func NewCashbackRepository(db *postgres.DB, logger *logger.Logger) cashback.Repository {
	return postgresRepo.NewCashbackRepository(db, logger)
}

func NewTransactionRepository(db *postgres.DB, logger *logger.Logger) settlement.Repository {
	return postgresRepo.NewTransactionRepository(db, logger)
}
