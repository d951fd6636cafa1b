package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
	"github.com/shopspring/decimal"
)

type subscriberRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriberRepository(db *postgres.DB, logger *logger.Logger) subscriber.Repository {
	return &subscriberRepository{db: db, logger: logger}
}

const subscriberColumns = `
	id, name, email, document, points, subscription_status,
	plan_id, plan_start_date, plan_end_date,
	gateway_customer_id, gateway_subscription_id, gateway_payment_id,
	last_payment_id, last_payment_at,
	status, created_at, updated_at, created_by, updated_by`

func (r *subscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	query := `
		INSERT INTO subscribers (
			id, name, email, document, points, subscription_status,
			plan_id, plan_start_date, plan_end_date,
			gateway_customer_id, gateway_subscription_id, gateway_payment_id,
			last_payment_id, last_payment_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :email, :document, :points, :subscription_status,
			:plan_id, :plan_start_date, :plan_end_date,
			:gateway_customer_id, :gateway_subscription_id, :gateway_payment_id,
			:last_payment_id, :last_payment_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating subscriber", "subscriber_id", s.ID, "email", s.Email)

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscriber").
			WithReportableDetails(map[string]any{
				"subscriber_id": s.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriberRepository) GetByID(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1 AND status != 'deleted'`
	return r.getOne(ctx, query, id)
}

func (r *subscriberRepository) GetByIDForUpdate(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	// Row lock serializes concurrent webhook transitions and settlement
	// commits against the same subscriber. Only valid inside WithTx.
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1 AND status != 'deleted' FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *subscriberRepository) GetByGatewayCustomerID(ctx context.Context, gatewayCustomerID string) (*subscriber.Subscriber, error) {
	// The gateway columns default to '' until checkout, so an empty lookup
	// value must never match a row. The != '' condition also keeps the
	// query on the partial index.
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE gateway_customer_id = $1 AND gateway_customer_id != '' AND status != 'deleted'`
	return r.getOne(ctx, query, gatewayCustomerID)
}

func (r *subscriberRepository) GetByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE gateway_subscription_id = $1 AND gateway_subscription_id != '' AND status != 'deleted'`
	return r.getOne(ctx, query, gatewaySubscriptionID)
}

func (r *subscriberRepository) getOne(ctx context.Context, query string, arg interface{}) (*subscriber.Subscriber, error) {
	var s subscriber.Subscriber
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &s, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHint("Subscriber not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscriber").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscribers SET
			name = :name,
			email = :email,
			document = :document,
			subscription_status = :subscription_status,
			plan_id = :plan_id,
			plan_start_date = :plan_start_date,
			plan_end_date = :plan_end_date,
			gateway_customer_id = :gateway_customer_id,
			gateway_subscription_id = :gateway_subscription_id,
			gateway_payment_id = :gateway_payment_id,
			last_payment_id = :last_payment_id,
			last_payment_at = :last_payment_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscriber").
			WithReportableDetails(map[string]any{
				"subscriber_id": s.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("subscriber not found").
			WithHint("Subscriber not found").
			WithReportableDetails(map[string]any{
				"subscriber_id": s.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriberRepository) CreditPoints(ctx context.Context, id string, amount decimal.Decimal) error {
	query := `
		UPDATE subscribers
		SET points = points + $1, updated_at = $2
		WHERE id = $3`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to credit points").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("subscriber not found").
			WithHint("Subscriber not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriberRepository) DebitPoints(ctx context.Context, id string, amount decimal.Decimal) error {
	// Conditional decrement: the WHERE clause enforces the non-negative
	// invariant at the row even if the caller did not clamp.
	query := `
		UPDATE subscribers
		SET points = points - $1, updated_at = $2
		WHERE id = $3 AND points >= $1`

	q := r.db.GetQuerier(ctx)
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to debit points").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("points debit would drive balance negative").
			WithHint("Insufficient points balance").
			WithReportableDetails(map[string]any{
				"subscriber_id": id,
				"requested":     amount,
			}).
			Mark(ierr.ErrInsufficientPoints)
	}
	return nil
}

func (r *subscriberRepository) ListExpired(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `
		SELECT ` + subscriberColumns + `
		FROM subscribers
		WHERE subscription_status = 'ACTIVE'
		  AND plan_end_date IS NOT NULL
		  AND plan_end_date < $1
		  AND status != 'deleted'`

	var subs []*subscriber.Subscriber
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &subs, query, time.Now().UTC()); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expired subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}
