package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/clubpulse/clubpulse/internal/domain/subscriber"
	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/clubpulse/clubpulse/internal/types"
	"github.com/shopspring/decimal"
)

// InMemorySubscriberStore implements subscriber.Repository
type InMemorySubscriberStore struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber.Subscriber
}

func NewInMemorySubscriberStore() *InMemorySubscriberStore {
	return &InMemorySubscriberStore{
		subscribers: make(map[string]*subscriber.Subscriber),
	}
}

func (s *InMemorySubscriberStore) Create(ctx context.Context, sub *subscriber.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscribers[sub.ID]; exists {
		return ierr.NewError("subscriber already exists").
			WithHint("Subscriber already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *sub
	s.subscribers[sub.ID] = &copied
	return nil
}

func (s *InMemorySubscriberStore) GetByID(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(func(sub *subscriber.Subscriber) bool { return sub.ID == id })
}

// GetByIDForUpdate behaves like GetByID; the in-memory store has no row locks
func (s *InMemorySubscriberStore) GetByIDForUpdate(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	return s.GetByID(ctx, id)
}

func (s *InMemorySubscriberStore) GetByGatewayCustomerID(ctx context.Context, gatewayCustomerID string) (*subscriber.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(func(sub *subscriber.Subscriber) bool {
		return sub.GatewayCustomerID != "" && sub.GatewayCustomerID == gatewayCustomerID
	})
}

func (s *InMemorySubscriberStore) GetByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*subscriber.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(func(sub *subscriber.Subscriber) bool {
		return sub.GatewaySubscriptionID != "" && sub.GatewaySubscriptionID == gatewaySubscriptionID
	})
}

func (s *InMemorySubscriberStore) Update(ctx context.Context, sub *subscriber.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.subscribers[sub.ID]
	if !exists {
		return s.notFound()
	}

	copied := *sub
	// Points move only through CreditPoints/DebitPoints, mirroring the SQL
	// repository where Update never touches the points column.
	copied.Points = stored.Points
	copied.UpdatedAt = time.Now().UTC()
	s.subscribers[sub.ID] = &copied
	return nil
}

func (s *InMemorySubscriberStore) CreditPoints(ctx context.Context, id string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscribers[id]
	if !exists {
		return s.notFound()
	}
	sub.Points = sub.Points.Add(amount)
	return nil
}

func (s *InMemorySubscriberStore) DebitPoints(ctx context.Context, id string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscribers[id]
	if !exists {
		return s.notFound()
	}
	if sub.Points.LessThan(amount) {
		return ierr.NewError("points debit exceeds balance").
			WithHint("Insufficient points balance for this redemption").
			Mark(ierr.ErrInsufficientPoints)
	}
	sub.Points = sub.Points.Sub(amount)
	return nil
}

func (s *InMemorySubscriberStore) ListExpired(ctx context.Context) ([]*subscriber.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	var result []*subscriber.Subscriber
	for _, sub := range s.subscribers {
		if sub.SubscriptionStatus == types.SubscriptionStatusActive &&
			sub.PlanEndDate != nil && sub.PlanEndDate.Before(now) {
			copied := *sub
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *InMemorySubscriberStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = make(map[string]*subscriber.Subscriber)
}

func (s *InMemorySubscriberStore) find(match func(*subscriber.Subscriber) bool) (*subscriber.Subscriber, error) {
	for _, sub := range s.subscribers {
		if match(sub) {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, s.notFound()
}

func (s *InMemorySubscriberStore) notFound() error {
	return ierr.NewError("subscriber not found").
		WithHint("Subscriber not found").
		Mark(ierr.ErrNotFound)
}
