package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/cashback"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

type cashbackRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCashbackRepository(db *postgres.DB, logger *logger.Logger) cashback.Repository {
	return &cashbackRepository{db: db, logger: logger}
}

const cashbackColumns = `
	id, subscriber_id, partner_id, balance, total_earned, total_used,
	status, created_at, updated_at, created_by, updated_by`

func (r *cashbackRepository) Get(ctx context.Context, subscriberID, partnerID string) (*cashback.Balance, error) {
	query := `
		SELECT ` + cashbackColumns + `
		FROM cashback_balances
		WHERE subscriber_id = $1 AND partner_id = $2 AND status != 'deleted'`

	var b cashback.Balance
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &b, query, subscriberID, partnerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHint("Cashback balance not found").
				WithReportableDetails(map[string]any{
					"subscriber_id": subscriberID,
					"partner_id":    partnerID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get cashback balance").
			Mark(ierr.ErrDatabase)
	}
	return &b, nil
}

func (r *cashbackRepository) Accrue(ctx context.Context, subscriberID, partnerID string, amount decimal.Decimal) error {
	// Lazy upsert: the row is created on first accrual; subsequent accruals
	// are a single atomic increment at the database.
	query := `
		INSERT INTO cashback_balances (
			id, subscriber_id, partner_id, balance, total_earned, total_used,
			status, created_at, updated_at, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $4, 0, $5, $6, $6, $7, $7)
		ON CONFLICT (subscriber_id, partner_id) DO UPDATE SET
			balance = cashback_balances.balance + EXCLUDED.balance,
			total_earned = cashback_balances.total_earned + EXCLUDED.total_earned,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`

	now := time.Now().UTC()
	q := r.db.GetQuerier(ctx)
	_, err := q.ExecContext(ctx, query,
		types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CASHBACK_BALANCE),
		subscriberID, partnerID, amount,
		types.StatusPublished, now, types.GetUserID(ctx),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to accrue cashback").
			WithReportableDetails(map[string]any{
				"subscriber_id": subscriberID,
				"partner_id":    partnerID,
				"amount":        amount,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *cashbackRepository) Redeem(ctx context.Context, subscriberID, partnerID string, amount decimal.Decimal) error {
	// Conditional decrement guards the non-negative invariant at the row
	query := `
		UPDATE cashback_balances
		SET balance = balance - $1,
		    total_used = total_used + $1,
		    updated_at = $2
		WHERE subscriber_id = $3 AND partner_id = $4 AND balance >= $1`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), subscriberID, partnerID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to redeem cashback").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("cashback redemption exceeds balance").
			WithHint("Insufficient cashback balance for this redemption").
			WithReportableDetails(map[string]any{
				"subscriber_id": subscriberID,
				"partner_id":    partnerID,
				"requested":     amount,
			}).
			Mark(ierr.ErrInsufficientCashback)
	}
	return nil
}

func (r *cashbackRepository) ListBySubscriber(ctx context.Context, subscriberID string) ([]*cashback.Balance, error) {
	query := `
		SELECT ` + cashbackColumns + `
		FROM cashback_balances
		WHERE subscriber_id = $1 AND status != 'deleted'
		ORDER BY created_at`

	var balances []*cashback.Balance
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &balances, query, subscriberID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list cashback balances").
			Mark(ierr.ErrDatabase)
	}
	return balances, nil
}

func (r *cashbackRepository) ListByPartner(ctx context.Context, partnerID string) ([]*cashback.Balance, error) {
	query := `
		SELECT ` + cashbackColumns + `
		FROM cashback_balances
		WHERE partner_id = $1 AND status != 'deleted'
		ORDER BY created_at`

	var balances []*cashback.Balance
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &balances, query, partnerID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list cashback balances").
			Mark(ierr.ErrDatabase)
	}
	return balances, nil
}
