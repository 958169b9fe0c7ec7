package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	routeDomain "github.com/trafficwatch/service-planner/internal/domain/route"
	"gorm.io/gorm"
)

// RouteModel is the GORM model for the saved_routes table.
type RouteModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name             string          `gorm:"not null;size:200"`
	OriginLabel      string          `gorm:"size:300"`
	DestinationLabel string          `gorm:"size:300"`
	OriginLat        *float64        `gorm:""`
	OriginLon        *float64        `gorm:""`
	DestinationLat   *float64        `gorm:""`
	DestinationLon   *float64        `gorm:""`
	Geometry         json.RawMessage `gorm:"type:jsonb"`
	Mode             string          `gorm:"not null;size:16;index"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RouteModel) TableName() string {
	return "saved_routes"
}

// GormRouteRepository is the GORM-based implementation of route.Repository.
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GormRouteRepository.
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// FindByID retrieves a saved route by its unique identifier.
func (r *GormRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*routeDomain.SavedRoute, error) {
	var model RouteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Route", id.String())
		}
		return nil, fmt.Errorf("failed to find route by ID: %w", err)
	}
	return toDomainRoute(&model)
}

// FindByOwnerID retrieves saved routes for one owner with pagination.
func (r *GormRouteRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*routeDomain.SavedRoute, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RouteModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner routes: %w", err)
	}

	var models []RouteModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner routes: %w", err)
	}

	routes := make([]*routeDomain.SavedRoute, len(models))
	for i, m := range models {
		rt, err := toDomainRoute(&m)
		if err != nil {
			return nil, 0, err
		}
		routes[i] = rt
	}
	return routes, total, nil
}

// Save persists a new saved route.
func (r *GormRouteRepository) Save(ctx context.Context, route *routeDomain.SavedRoute) error {
	model, err := toRouteModel(route)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}
	return nil
}

// Update persists changes to an existing route with optimistic locking.
func (r *GormRouteRepository) Update(ctx context.Context, route *routeDomain.SavedRoute) error {
	model, err := toRouteModel(route)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&RouteModel{}).
		Where("id = ? AND version = ?", route.ID(), route.Version()-1).
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update route: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewConflictError("route was modified concurrently")
	}
	return nil
}

// Delete removes a saved route.
func (r *GormRouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RouteModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete route: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Route", id.String())
	}
	return nil
}

// CountByMode returns the distribution of an owner's routes over transport modes.
func (r *GormRouteRepository) CountByMode(ctx context.Context, ownerID uuid.UUID) (map[planner.Mode]int64, error) {
	type row struct {
		Mode  string
		Count int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&RouteModel{}).
		Select("mode, count(*) as count").
		Where("owner_id = ?", ownerID).
		Group("mode").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count routes by mode: %w", err)
	}

	out := make(map[planner.Mode]int64, len(rows))
	for _, rw := range rows {
		out[planner.Mode(rw.Mode)] = rw.Count
	}
	return out, nil
}

func toRouteModel(route *routeDomain.SavedRoute) (*RouteModel, error) {
	model := &RouteModel{
		ID:               route.ID(),
		OwnerID:          route.OwnerID(),
		Name:             route.Name(),
		OriginLabel:      route.OriginLabel(),
		DestinationLabel: route.DestinationLabel(),
		Mode:             string(route.Mode()),
		Version:          route.Version(),
		CreatedAt:        route.CreatedAt(),
		UpdatedAt:        route.UpdatedAt(),
	}

	if origin := route.Origin(); origin != nil {
		model.OriginLat = &origin.Lat
		model.OriginLon = &origin.Lon
	}
	if dest := route.Destination(); dest != nil {
		model.DestinationLat = &dest.Lat
		model.DestinationLon = &dest.Lon
	}

	if route.HasFrozenGeometry() {
		geom, err := json.Marshal(route.Geometry())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal route geometry: %w", err)
		}
		model.Geometry = geom
	}
	return model, nil
}

func toDomainRoute(model *RouteModel) (*routeDomain.SavedRoute, error) {
	var origin, dest *planner.Coordinate
	if model.OriginLat != nil && model.OriginLon != nil {
		origin = &planner.Coordinate{Lat: *model.OriginLat, Lon: *model.OriginLon}
	}
	if model.DestinationLat != nil && model.DestinationLon != nil {
		dest = &planner.Coordinate{Lat: *model.DestinationLat, Lon: *model.DestinationLon}
	}

	var geometry []planner.Coordinate
	if len(model.Geometry) > 0 {
		if err := json.Unmarshal(model.Geometry, &geometry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal route geometry: %w", err)
		}
	}

	return routeDomain.Reconstruct(
		model.ID,
		model.OwnerID,
		model.Name,
		model.OriginLabel,
		model.DestinationLabel,
		origin,
		dest,
		geometry,
		planner.Mode(model.Mode),
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}
