package pin

import (
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
)

// Allowed marker colors for the map UI.
var allowedColors = map[string]struct{}{
	"red": {}, "blue": {}, "green": {}, "orange": {}, "purple": {},
}

// SavedPin is a named map marker owned by a user. A pin can seed the route
// selection state as either endpoint.
type SavedPin struct {
	id         uuid.UUID
	ownerID    uuid.UUID
	name       string
	note       string
	color      string
	coordinate planner.Coordinate
	createdAt  time.Time
	updatedAt  time.Time
}

// NewSavedPin creates a pin with validated fields.
func NewSavedPin(ownerID uuid.UUID, name, note, color string, coordinate planner.Coordinate) (*SavedPin, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, apperr.NewValidationError("pin name is required")
	}
	if !coordinate.Valid() {
		return nil, apperr.NewValidationError("pin coordinate out of bounds")
	}
	if color == "" {
		color = "red"
	}
	if _, ok := allowedColors[color]; !ok {
		return nil, apperr.NewValidationError("unsupported pin color: " + color)
	}

	now := time.Now().UTC()
	return &SavedPin{
		id:         uuid.New(),
		ownerID:    ownerID,
		name:       name,
		note:       note,
		color:      color,
		coordinate: coordinate,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a SavedPin from persistence data.
func Reconstruct(id, ownerID uuid.UUID, name, note, color string, coordinate planner.Coordinate, createdAt, updatedAt time.Time) *SavedPin {
	return &SavedPin{
		id:         id,
		ownerID:    ownerID,
		name:       name,
		note:       note,
		color:      color,
		coordinate: coordinate,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (p *SavedPin) ID() uuid.UUID                  { return p.id }
func (p *SavedPin) OwnerID() uuid.UUID             { return p.ownerID }
func (p *SavedPin) Name() string                   { return p.name }
func (p *SavedPin) Note() string                   { return p.note }
func (p *SavedPin) Color() string                  { return p.color }
func (p *SavedPin) Coordinate() planner.Coordinate { return p.coordinate }
func (p *SavedPin) CreatedAt() time.Time           { return p.createdAt }
func (p *SavedPin) UpdatedAt() time.Time           { return p.updatedAt }

// IsOwnedBy checks if the pin belongs to the given owner.
func (p *SavedPin) IsOwnedBy(ownerID uuid.UUID) bool {
	return p.ownerID == ownerID
}

// UpdateDetails changes the pin's name, note and color.
func (p *SavedPin) UpdateDetails(name, note, color string) error {
	if name == "" {
		return apperr.NewValidationError("pin name is required")
	}
	if _, ok := allowedColors[color]; !ok {
		return apperr.NewValidationError("unsupported pin color: " + color)
	}
	p.name = name
	p.note = note
	p.color = color
	p.updatedAt = time.Now().UTC()
	return nil
}
