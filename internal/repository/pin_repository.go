package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/domain/pin"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"gorm.io/gorm"
)

// PinModel is the GORM model for the saved_pins table.
type PinModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null;size:200"`
	Note      string    `gorm:"size:500"`
	Color     string    `gorm:"not null;size:16"`
	Lat       float64   `gorm:"not null"`
	Lon       float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PinModel) TableName() string {
	return "saved_pins"
}

// GormPinRepository is the GORM-based implementation of pin.Repository.
type GormPinRepository struct {
	db *gorm.DB
}

// NewGormPinRepository creates a new GormPinRepository.
func NewGormPinRepository(db *gorm.DB) *GormPinRepository {
	return &GormPinRepository{db: db}
}

// FindByID retrieves a pin by its unique identifier.
func (r *GormPinRepository) FindByID(ctx context.Context, id uuid.UUID) (*pin.SavedPin, error) {
	var model PinModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Pin", id.String())
		}
		return nil, fmt.Errorf("failed to find pin by ID: %w", err)
	}
	return toDomainPin(&model), nil
}

// FindByOwnerID retrieves pins for one owner with pagination.
func (r *GormPinRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*pin.SavedPin, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&PinModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner pins: %w", err)
	}

	var models []PinModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner pins: %w", err)
	}

	pins := make([]*pin.SavedPin, len(models))
	for i, m := range models {
		pins[i] = toDomainPin(&m)
	}
	return pins, total, nil
}

// Save persists a new pin.
func (r *GormPinRepository) Save(ctx context.Context, p *pin.SavedPin) error {
	if err := r.db.WithContext(ctx).Create(toPinModel(p)).Error; err != nil {
		return fmt.Errorf("failed to save pin: %w", err)
	}
	return nil
}

// Update persists changes to an existing pin.
func (r *GormPinRepository) Update(ctx context.Context, p *pin.SavedPin) error {
	result := r.db.WithContext(ctx).
		Model(&PinModel{}).
		Where("id = ?", p.ID()).
		Updates(toPinModel(p))
	if result.Error != nil {
		return fmt.Errorf("failed to update pin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Pin", p.ID().String())
	}
	return nil
}

// Delete removes a pin.
func (r *GormPinRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PinModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete pin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Pin", id.String())
	}
	return nil
}

func toPinModel(p *pin.SavedPin) *PinModel {
	coord := p.Coordinate()
	return &PinModel{
		ID:        p.ID(),
		OwnerID:   p.OwnerID(),
		Name:      p.Name(),
		Note:      p.Note(),
		Color:     p.Color(),
		Lat:       coord.Lat,
		Lon:       coord.Lon,
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toDomainPin(model *PinModel) *pin.SavedPin {
	return pin.Reconstruct(
		model.ID,
		model.OwnerID,
		model.Name,
		model.Note,
		model.Color,
		planner.Coordinate{Lat: model.Lat, Lon: model.Lon},
		model.CreatedAt,
		model.UpdatedAt,
	)
}
