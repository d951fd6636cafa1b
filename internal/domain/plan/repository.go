package plan

import (
	"context"
)

// Repository defines the interface for plan persistence operations.
// The engine only reads plans; writes happen through the admin surface.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
}
