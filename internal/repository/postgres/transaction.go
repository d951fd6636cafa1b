package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/settlement"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
	"github.com/clubpulse/clubpulse/internal/types"
)

type transactionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTransactionRepository(db *postgres.DB, logger *logger.Logger) settlement.Repository {
	return &transactionRepository{db: db, logger: logger}
}

const transactionColumns = `
	id, code, subscriber_id, partner_id, amount, discount_applied,
	points_used, points_earned, cashback_used, cashback_generated,
	final_amount, transaction_status, metadata,
	status, created_at, updated_at, created_by, updated_by`

func (r *transactionRepository) Create(ctx context.Context, t *settlement.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, code, subscriber_id, partner_id, amount, discount_applied,
			points_used, points_earned, cashback_used, cashback_generated,
			final_amount, transaction_status, metadata,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :code, :subscriber_id, :partner_id, :amount, :discount_applied,
			:points_used, :points_earned, :cashback_used, :cashback_generated,
			:final_amount, :transaction_status, :metadata,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating transaction",
		"transaction_id", t.ID,
		"subscriber_id", t.SubscriberID,
		"partner_id", t.PartnerID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create transaction").
			WithReportableDetails(map[string]any{
				"transaction_id": t.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*settlement.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var t settlement.Transaction
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &t, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHint("Transaction not found").
				WithReportableDetails(map[string]any{
					"transaction_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get transaction").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id string, status types.TransactionStatus) error {
	query := `UPDATE transactions SET transaction_status = $1, updated_at = $2 WHERE id = $3`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update transaction status").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("transaction not found").
			WithHint("Transaction not found").
			WithReportableDetails(map[string]any{
				"transaction_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *transactionRepository) ListBySubscriber(ctx context.Context, subscriberID string) ([]*settlement.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE subscriber_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, subscriberID)
}

func (r *transactionRepository) ListByPartner(ctx context.Context, partnerID string) ([]*settlement.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE partner_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, partnerID)
}

func (r *transactionRepository) list(ctx context.Context, query string, arg interface{}) ([]*settlement.Transaction, error) {
	var txns []*settlement.Transaction
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &txns, query, arg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list transactions").
			Mark(ierr.ErrDatabase)
	}
	return txns, nil
}
