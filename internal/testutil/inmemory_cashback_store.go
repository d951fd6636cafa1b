package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/cashback"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryCashbackStore implements cashback.Repository with the same lazy
// upsert and conditional-decrement semantics as the SQL repository.
type InMemoryCashbackStore struct {
	mu       sync.RWMutex
	balances map[string]*cashback.Balance
}

func NewInMemoryCashbackStore() *InMemoryCashbackStore {
	return &InMemoryCashbackStore{
		balances: make(map[string]*cashback.Balance),
	}
}

func (s *InMemoryCashbackStore) key(subscriberID, partnerID string) string {
	return subscriberID + "/" + partnerID
}

func (s *InMemoryCashbackStore) Get(ctx context.Context, subscriberID, partnerID string) (*cashback.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.balances[s.key(subscriberID, partnerID)]
	if !exists {
		return nil, ierr.NewError("cashback balance not found").
			WithHint("Cashback balance not found").
			Mark(ierr.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

func (s *InMemoryCashbackStore) Accrue(ctx context.Context, subscriberID, partnerID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(subscriberID, partnerID)
	b, exists := s.balances[key]
	if !exists {
		now := time.Now().UTC()
		b = &cashback.Balance{
			ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CASHBACK_BALANCE),
			SubscriberID: subscriberID,
			PartnerID:    partnerID,
			Balance:      decimal.Zero,
			TotalEarned:  decimal.Zero,
			TotalUsed:    decimal.Zero,
			BaseModel: types.BaseModel{
				Status:    types.StatusPublished,
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		s.balances[key] = b
	}

	b.Accrue(amount)
	return nil
}

func (s *InMemoryCashbackStore) Redeem(ctx context.Context, subscriberID, partnerID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.balances[s.key(subscriberID, partnerID)]
	if !exists || b.Balance.LessThan(amount) {
		return ierr.NewError("cashback redemption exceeds balance").
			WithHint("Insufficient cashback balance for this redemption").
			Mark(ierr.ErrInsufficientCashback)
	}

	return b.Redeem(amount)
}

func (s *InMemoryCashbackStore) ListBySubscriber(ctx context.Context, subscriberID string) ([]*cashback.Balance, error) {
	return s.list(func(b *cashback.Balance) bool { return b.SubscriberID == subscriberID })
}

func (s *InMemoryCashbackStore) ListByPartner(ctx context.Context, partnerID string) ([]*cashback.Balance, error) {
	return s.list(func(b *cashback.Balance) bool { return b.PartnerID == partnerID })
}

func (s *InMemoryCashbackStore) list(match func(*cashback.Balance) bool) ([]*cashback.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*cashback.Balance, 0)
	for _, b := range s.balances {
		if match(b) {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *InMemoryCashbackStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = make(map[string]*cashback.Balance)
}
