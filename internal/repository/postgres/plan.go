package postgres

import (
	"context"
	"database/sql"

	"github.com/clubpulse/clubpulse/internal/domain/plan"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*plan.Plan, error) {
	query := `
		SELECT id, name, description, price, period,
		       status, created_at, updated_at, created_by, updated_by
		FROM plans
		WHERE id = $1 AND status != 'deleted'`

	var p plan.Plan
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHint("Plan not found").
				WithReportableDetails(map[string]any{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}

	benefits, err := r.listBenefits(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Benefits = benefits

	return &p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	query := `
		SELECT id, name, description, price, period,
		       status, created_at, updated_at, created_by, updated_by
		FROM plans
		WHERE status != 'deleted'
		ORDER BY created_at`

	var plans []*plan.Plan
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &plans, query); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}

	for _, p := range plans {
		benefits, err := r.listBenefits(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Benefits = benefits
	}

	return plans, nil
}

func (r *planRepository) listBenefits(ctx context.Context, planID string) ([]*plan.Benefit, error) {
	query := `
		SELECT id, plan_id, type, percentage, multiplier, position,
		       status, created_at, updated_at, created_by, updated_by
		FROM plan_benefits
		WHERE plan_id = $1 AND status != 'deleted'
		ORDER BY position`

	var benefits []*plan.Benefit
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &benefits, query, planID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plan benefits").
			WithReportableDetails(map[string]any{
				"plan_id": planID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return benefits, nil
}
