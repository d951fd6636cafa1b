package testutil

import (
	"context"

	"github.com/clubpulse/clubpulse/internal/domain/partner"
)

// InMemoryPartnerStore implements partner.Repository
type InMemoryPartnerStore struct {
	*InMemoryStore[*partner.Partner]
}

func NewInMemoryPartnerStore() *InMemoryPartnerStore {
	return &InMemoryPartnerStore{
		InMemoryStore: NewInMemoryStore[*partner.Partner](),
	}
}

// Add seeds a partner into the store
func (s *InMemoryPartnerStore) Add(ctx context.Context, p *partner.Partner) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPartnerStore) GetByID(ctx context.Context, id string) (*partner.Partner, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPartnerStore) List(ctx context.Context) ([]*partner.Partner, error) {
	return s.InMemoryStore.List(ctx, nil, func(i, j *partner.Partner) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}
