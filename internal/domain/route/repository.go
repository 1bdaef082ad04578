package route

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for route persistence.
type Repository interface {
	Create(ctx context.Context, r *Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*Route, error)
}
