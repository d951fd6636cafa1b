package settlement

import (
	"context"

	"github.com/clubpulse/clubpulse/internal/types"
)

// Repository defines the interface for transaction persistence operations.
// Transactions are append-only; the only mutation is the status flip.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	UpdateStatus(ctx context.Context, id string, status types.TransactionStatus) error
	ListBySubscriber(ctx context.Context, subscriberID string) ([]*Transaction, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*Transaction, error)
}
