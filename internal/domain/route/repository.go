package route

import (
	"context"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
)

// Repository defines persistence operations for saved routes.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SavedRoute, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*SavedRoute, int64, error)
	Save(ctx context.Context, r *SavedRoute) error
	Update(ctx context.Context, r *SavedRoute) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByMode(ctx context.Context, ownerID uuid.UUID) (map[planner.Mode]int64, error)
}
