package testutil

import (
	"context"

	"github.com/clubpulse/clubpulse/internal/domain/plan"
)

// InMemoryPlanStore implements plan.Repository. Plans are reference data, so
// the store exposes Add for test seeding.
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

// Add seeds a plan into the store
func (s *InMemoryPlanStore) Add(ctx context.Context, p *plan.Plan) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPlanStore) GetByID(ctx context.Context, id string) (*plan.Plan, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPlanStore) List(ctx context.Context) ([]*plan.Plan, error) {
	return s.InMemoryStore.List(ctx, nil, func(i, j *plan.Plan) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}
