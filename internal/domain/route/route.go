package route

import (
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
)

// SavedRoute is a named, owner-scoped route between two labeled endpoints.
// It may carry a frozen car geometry so the route can be drawn before any
// fresh provider round-trip completes.
type SavedRoute struct {
	id               uuid.UUID
	ownerID          uuid.UUID
	name             string
	originLabel      string
	destinationLabel string
	origin           *planner.Coordinate
	destination      *planner.Coordinate
	geometry         []planner.Coordinate
	mode             planner.Mode
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewSavedRoute creates a saved route with validated fields.
func NewSavedRoute(
	ownerID uuid.UUID,
	name, originLabel, destinationLabel string,
	origin, destination *planner.Coordinate,
	geometry []planner.Coordinate,
	mode planner.Mode,
) (*SavedRoute, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, apperr.NewValidationError("route name is required")
	}
	if mode == "" {
		mode = planner.ModeCar
	}
	if !mode.IsValid() {
		return nil, apperr.NewValidationError("invalid transport mode: " + string(mode))
	}
	if origin != nil && !origin.Valid() {
		return nil, apperr.NewValidationError("origin coordinate out of bounds")
	}
	if destination != nil && !destination.Valid() {
		return nil, apperr.NewValidationError("destination coordinate out of bounds")
	}

	now := time.Now().UTC()
	return &SavedRoute{
		id:               uuid.New(),
		ownerID:          ownerID,
		name:             name,
		originLabel:      originLabel,
		destinationLabel: destinationLabel,
		origin:           origin,
		destination:      destination,
		geometry:         geometry,
		mode:             mode,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a SavedRoute from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name, originLabel, destinationLabel string,
	origin, destination *planner.Coordinate,
	geometry []planner.Coordinate,
	mode planner.Mode,
	version int64,
	createdAt, updatedAt time.Time,
) *SavedRoute {
	return &SavedRoute{
		id:               id,
		ownerID:          ownerID,
		name:             name,
		originLabel:      originLabel,
		destinationLabel: destinationLabel,
		origin:           origin,
		destination:      destination,
		geometry:         geometry,
		mode:             mode,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (r *SavedRoute) ID() uuid.UUID                    { return r.id }
func (r *SavedRoute) OwnerID() uuid.UUID               { return r.ownerID }
func (r *SavedRoute) Name() string                     { return r.name }
func (r *SavedRoute) OriginLabel() string              { return r.originLabel }
func (r *SavedRoute) DestinationLabel() string         { return r.destinationLabel }
func (r *SavedRoute) Origin() *planner.Coordinate      { return r.origin }
func (r *SavedRoute) Destination() *planner.Coordinate { return r.destination }
func (r *SavedRoute) Geometry() []planner.Coordinate   { return r.geometry }
func (r *SavedRoute) Mode() planner.Mode               { return r.mode }
func (r *SavedRoute) Version() int64                   { return r.version }
func (r *SavedRoute) CreatedAt() time.Time             { return r.createdAt }
func (r *SavedRoute) UpdatedAt() time.Time             { return r.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the route belongs to the given owner.
func (r *SavedRoute) IsOwnedBy(ownerID uuid.UUID) bool {
	return r.ownerID == ownerID
}

// HasCoordinates reports whether both endpoints carry coordinates, which is
// required to seed the selection state from this route.
func (r *SavedRoute) HasCoordinates() bool {
	return r.origin != nil && r.destination != nil
}

// HasFrozenGeometry reports whether a cached car path is stored.
func (r *SavedRoute) HasFrozenGeometry() bool {
	return len(r.geometry) > 0
}

// Rename updates the route's display name.
func (r *SavedRoute) Rename(name string) error {
	if name == "" {
		return apperr.NewValidationError("route name is required")
	}
	r.name = name
	r.updatedAt = time.Now().UTC()
	return nil
}

// ChangeMode updates the route's preferred transport mode.
func (r *SavedRoute) ChangeMode(mode planner.Mode) error {
	if !mode.IsValid() {
		return apperr.NewValidationError("invalid transport mode: " + string(mode))
	}
	r.mode = mode
	r.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the optimistic-locking version. Called once per
// persisted update.
func (r *SavedRoute) IncrementVersion() {
	r.version++
}
