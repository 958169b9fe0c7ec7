package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
)

// Topic and event type names for planner events.
const (
	TopicPlannerEvents = "planner-events"

	TypeRouteSaved         = "planner.route.saved"
	TypeRouteDeleted       = "planner.route.deleted"
	TypePinSaved           = "planner.pin.saved"
	TypePinDeleted         = "planner.pin.deleted"
	TypeComparisonComputed = "planner.comparison.computed"
)

// RouteSavedEvent is emitted when a user saves or updates a named route.
type RouteSavedEvent struct {
	RouteID          uuid.UUID    `json:"route_id"`
	OwnerID          uuid.UUID    `json:"owner_id"`
	Name             string       `json:"name"`
	OriginLabel      string       `json:"origin_label"`
	DestinationLabel string       `json:"destination_label"`
	Mode             planner.Mode `json:"mode"`
}

// RouteDeletedEvent is emitted when a saved route is removed.
type RouteDeletedEvent struct {
	RouteID uuid.UUID `json:"route_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// PinSavedEvent is emitted when a user drops or updates a map pin.
type PinSavedEvent struct {
	PinID      uuid.UUID          `json:"pin_id"`
	OwnerID    uuid.UUID          `json:"owner_id"`
	Name       string             `json:"name"`
	Color      string             `json:"color"`
	Coordinate planner.Coordinate `json:"coordinate"`
}

// PinDeletedEvent is emitted when a pin is removed.
type PinDeletedEvent struct {
	PinID   uuid.UUID `json:"pin_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// ComparisonComputedEvent is emitted after a successful multi-mode comparison,
// feeding usage analytics.
type ComparisonComputedEvent struct {
	Start          planner.Coordinate   `json:"start"`
	Destination    planner.Coordinate   `json:"destination"`
	CarDistanceKm  float64              `json:"car_distance_km"`
	CarDurationSec int                  `json:"car_duration_seconds"`
	TrafficLevel   planner.TrafficLevel `json:"traffic_level"`
	HasTransit     bool                 `json:"has_transit"`
	RequestedAt    time.Time            `json:"requested_at"`
}
