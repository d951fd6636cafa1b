package testutil

import (
	"context"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/settlement"
	"github.com/clubpulse/clubpulse/internal/types"
)

// InMemoryTransactionStore implements settlement.Repository
type InMemoryTransactionStore struct {
	*InMemoryStore[*settlement.Transaction]
}

func NewInMemoryTransactionStore() *InMemoryTransactionStore {
	return &InMemoryTransactionStore{
		InMemoryStore: NewInMemoryStore[*settlement.Transaction](),
	}
}

func (s *InMemoryTransactionStore) Create(ctx context.Context, t *settlement.Transaction) error {
	copied := *t
	return s.InMemoryStore.Create(ctx, t.ID, &copied)
}

func (s *InMemoryTransactionStore) GetByID(ctx context.Context, id string) (*settlement.Transaction, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	copied := *t
	return &copied, nil
}

func (s *InMemoryTransactionStore) UpdateStatus(ctx context.Context, id string, status types.TransactionStatus) error {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryTransactionStore) ListBySubscriber(ctx context.Context, subscriberID string) ([]*settlement.Transaction, error) {
	return s.InMemoryStore.List(ctx,
		func(ctx context.Context, t *settlement.Transaction) bool {
			return t.SubscriberID == subscriberID
		},
		byCreatedAtDesc,
	)
}

func (s *InMemoryTransactionStore) ListByPartner(ctx context.Context, partnerID string) ([]*settlement.Transaction, error) {
	return s.InMemoryStore.List(ctx,
		func(ctx context.Context, t *settlement.Transaction) bool {
			return t.PartnerID == partnerID
		},
		byCreatedAtDesc,
	)
}

func byCreatedAtDesc(i, j *settlement.Transaction) bool {
	return i.CreatedAt.After(j.CreatedAt)
}
