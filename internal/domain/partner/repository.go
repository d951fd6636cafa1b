package partner

import "context"

// Repository defines the interface for partner persistence operations
type Repository interface {
	GetByID(ctx context.Context, id string) (*Partner, error)
	List(ctx context.Context) ([]*Partner, error)
}
