package planner

// ModeEstimate is the normalized travel estimate for one transport mode.
// It is immutable once produced and regenerated on every aggregation.
type ModeEstimate struct {
	Mode                Mode         `json:"mode"`
	DistanceKm          float64      `json:"distance_km"`
	DurationSeconds     int          `json:"duration_seconds"`
	Geometry            []Coordinate `json:"geometry,omitempty"`
	TrafficDelaySeconds int          `json:"traffic_delay_seconds"`
	TrafficLevel        TrafficLevel `json:"traffic_level,omitempty"`
	// RouteNumber is set for transit estimates only (the line serving the
	// best connection).
	RouteNumber string `json:"route_number,omitempty"`
}

// RouteComparison maps each successfully resolved mode to its estimate.
// Car, bike and walk are always present; transit is best-effort.
type RouteComparison struct {
	Estimates map[Mode]ModeEstimate `json:"estimates"`
}

// NewRouteComparison builds a comparison from the mandatory estimates.
func NewRouteComparison(car, bike, walk ModeEstimate) *RouteComparison {
	return &RouteComparison{
		Estimates: map[Mode]ModeEstimate{
			ModeCar:  car,
			ModeBike: bike,
			ModeWalk: walk,
		},
	}
}

// WithTransit returns the comparison extended with a transit estimate.
func (rc *RouteComparison) WithTransit(transit ModeEstimate) *RouteComparison {
	rc.Estimates[ModeTransit] = transit
	return rc
}

// Car returns the car estimate.
func (rc *RouteComparison) Car() ModeEstimate {
	return rc.Estimates[ModeCar]
}

// Get returns the estimate for a mode if present.
func (rc *RouteComparison) Get(mode Mode) (ModeEstimate, bool) {
	est, ok := rc.Estimates[mode]
	return est, ok
}

// HasTransit reports whether a transit estimate was spliced in.
func (rc *RouteComparison) HasTransit() bool {
	_, ok := rc.Estimates[ModeTransit]
	return ok
}
