package pin

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for saved pins.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SavedPin, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*SavedPin, int64, error)
	Save(ctx context.Context, p *SavedPin) error
	Update(ctx context.Context, p *SavedPin) error
	Delete(ctx context.Context, id uuid.UUID) error
}
