package planner

import (
	"context"
	"time"
)

// ProviderRoute is a raw route as returned by the routing provider, before
// normalization.
type ProviderRoute struct {
	DistanceKm      float64
	DurationSeconds float64
	Geometry        []Coordinate
}

// RoutingProvider is the port for the external road/path network provider.
type RoutingProvider interface {
	// Route computes a route for the given mode between two coordinates.
	Route(ctx context.Context, mode Mode, from, to Coordinate) (ProviderRoute, error)
}

// Place is one forward-geocoding candidate.
type Place struct {
	Label      string     `json:"label"`
	Coordinate Coordinate `json:"coordinate"`
}

// GeocodingProvider is the port for forward and reverse geocoding.
type GeocodingProvider interface {
	// Search resolves free text to candidate places.
	Search(ctx context.Context, text string) ([]Place, error)
	// Reverse resolves a coordinate to a short display label.
	Reverse(ctx context.Context, coord Coordinate) (string, error)
}

// FlowPoint is the flow measurement for one sampled point of a route.
type FlowPoint struct {
	Coordinate    Coordinate `json:"coordinate"`
	CurrentSpeed  float64    `json:"current_speed"`
	FreeFlowSpeed float64    `json:"free_flow_speed"`
	SpeedRatio    float64    `json:"speed_ratio"`
	Confidence    float64    `json:"confidence"`
}

// TrafficFlowProvider is the port for per-point flow-rate data along a route.
type TrafficFlowProvider interface {
	// Flow returns flow measurements for the given sampled points. A nil
	// simulationTime means "now".
	Flow(ctx context.Context, points []Coordinate, simulationTime *time.Time) ([]FlowPoint, error)
}

// TransitStop is one stop known to the transit network.
type TransitStop struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}

// TransitConnection is one candidate transit trip between two stops.
type TransitConnection struct {
	RouteNumber     string `json:"route_number"`
	DurationMinutes int    `json:"duration_minutes"`
	DepartureTime   string `json:"departure_time,omitempty"`
}

// TransitProvider is the port for the external transit planner.
type TransitProvider interface {
	// Stops lists all stops in the network.
	Stops(ctx context.Context) ([]TransitStop, error)
	// NearestStop resolves the stop closest to a coordinate.
	NearestStop(ctx context.Context, coord Coordinate) (TransitStop, error)
	// PlanTrip finds candidate connections between two stops, best first.
	PlanTrip(ctx context.Context, fromStopID, toStopID string, departure *time.Time) ([]TransitConnection, error)
}
