package postgres

import (
	"context"
	"database/sql"

	"github.com/clubpulse/clubpulse/internal/domain/partner"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/logger"
	"github.com/clubpulse/clubpulse/internal/postgres"
)

type partnerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPartnerRepository(db *postgres.DB, logger *logger.Logger) partner.Repository {
	return &partnerRepository{db: db, logger: logger}
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*partner.Partner, error) {
	query := `
		SELECT id, name, document, active,
		       status, created_at, updated_at, created_by, updated_by
		FROM partners
		WHERE id = $1 AND status != 'deleted'`

	var p partner.Partner
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.WithError(err).
				WithHint("Partner not found").
				WithReportableDetails(map[string]any{
					"partner_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get partner").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *partnerRepository) List(ctx context.Context) ([]*partner.Partner, error) {
	query := `
		SELECT id, name, document, active,
		       status, created_at, updated_at, created_by, updated_by
		FROM partners
		WHERE status != 'deleted'
		ORDER BY created_at`

	var partners []*partner.Partner
	q := r.db.GetQuerier(ctx)
	if err := q.SelectContext(ctx, &partners, query); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list partners").
			Mark(ierr.ErrDatabase)
	}
	return partners, nil
}
