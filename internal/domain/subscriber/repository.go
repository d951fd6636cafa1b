package subscriber

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for subscriber persistence operations
type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	GetByID(ctx context.Context, id string) (*Subscriber, error)

	// GetByIDForUpdate takes a row-level lock on the subscriber inside the
	// ambient transaction. Webhook transitions and settlement commits for the
	// same subscriber serialize on this lock.
	GetByIDForUpdate(ctx context.Context, id string) (*Subscriber, error)

	// Lookups by the gateway-assigned identifiers stored at checkout time.
	// Return ErrNotFound when no subscriber has recorded the identifier.
	GetByGatewayCustomerID(ctx context.Context, gatewayCustomerID string) (*Subscriber, error)
	GetByGatewaySubscriptionID(ctx context.Context, gatewaySubscriptionID string) (*Subscriber, error)

	// Update persists subscription state and gateway identifier changes
	Update(ctx context.Context, s *Subscriber) error

	// CreditPoints and DebitPoints are atomic conditional updates on the
	// embedded points column; DebitPoints fails with ErrInsufficientPoints
	// rather than driving the balance negative.
	CreditPoints(ctx context.Context, id string, amount decimal.Decimal) error
	DebitPoints(ctx context.Context, id string, amount decimal.Decimal) error

	// ListExpired returns ACTIVE subscribers whose plan validity window has
	// passed, for the expiration sweep.
	ListExpired(ctx context.Context) ([]*Subscriber, error)
}
