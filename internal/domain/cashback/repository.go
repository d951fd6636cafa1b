package cashback

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for cashback ledger persistence.
// Accrue and Redeem are single-statement read-modify-writes guarded at the
// database row, never blind overwrites in application code.
type Repository interface {
	// Get returns the balance row for the pair, ErrNotFound if none exists yet
	Get(ctx context.Context, subscriberID, partnerID string) (*Balance, error)

	// Accrue upserts the (subscriber, partner) row, incrementing balance and
	// total_earned by amount.
	Accrue(ctx context.Context, subscriberID, partnerID string, amount decimal.Decimal) error

	// Redeem decrements balance and increments total_used; fails with
	// ErrInsufficientCashback when amount exceeds the current balance.
	Redeem(ctx context.Context, subscriberID, partnerID string, amount decimal.Decimal) error

	// ListBySubscriber returns all partner balances held by a subscriber
	ListBySubscriber(ctx context.Context, subscriberID string) ([]*Balance, error)

	// ListByPartner returns all subscriber balances owed by a partner
	ListByPartner(ctx context.Context, partnerID string) ([]*Balance, error)
}
