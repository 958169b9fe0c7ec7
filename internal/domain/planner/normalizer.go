package planner

import (
	"context"
	"errors"
	"math"
	"time"
)

// Assumed average urban speeds. Provider durations for bike and walk are
// discarded: they do not reflect intersections, signals and real urban
// conditions, so the duration is recomputed from distance instead.
const (
	bikeSpeedKmh = 15.0
	walkSpeedKmh = 5.0
)

// ModeNormalizer converts raw provider routes into comparable ModeEstimates,
// applying mode-specific corrections. The car mode additionally runs through
// the congestion model.
type ModeNormalizer struct {
	routing    RoutingProvider
	congestion *CongestionModel
}

// NewModeNormalizer creates a normalizer over the given routing provider.
func NewModeNormalizer(routing RoutingProvider, congestion *CongestionModel) *ModeNormalizer {
	return &ModeNormalizer{routing: routing, congestion: congestion}
}

// Normalize fetches the provider route for one mode and produces its
// normalized estimate evaluated at the requested time.
func (n *ModeNormalizer) Normalize(ctx context.Context, mode Mode, from, to Coordinate, at time.Time) (ModeEstimate, error) {
	route, err := n.routing.Route(ctx, mode, from, to)
	if err != nil {
		var noRoute *NoRouteFoundError
		if errors.As(err, &noRoute) {
			return ModeEstimate{}, err
		}
		var unavailable *ProviderUnavailableError
		if errors.As(err, &unavailable) {
			return ModeEstimate{}, err
		}
		return ModeEstimate{}, &ProviderUnavailableError{Provider: "routing", Err: err}
	}

	return n.normalizeRoute(mode, route, at)
}

func (n *ModeNormalizer) normalizeRoute(mode Mode, route ProviderRoute, at time.Time) (ModeEstimate, error) {
	// Distance is taken from the provider verbatim, rounded to 0.1 km.
	distanceKm := math.Round(route.DistanceKm*10) / 10

	est := ModeEstimate{
		Mode:       mode,
		DistanceKm: distanceKm,
		Geometry:   route.Geometry,
	}

	switch mode {
	case ModeCar:
		base := int(math.Round(route.DurationSeconds))
		congestion := n.congestion.Estimate(base, at)
		est.DurationSeconds = base + congestion.DelaySeconds
		est.TrafficDelaySeconds = congestion.DelaySeconds
		est.TrafficLevel = congestion.Level
	case ModeBike:
		est.DurationSeconds = durationFromSpeed(distanceKm, bikeSpeedKmh)
	case ModeWalk:
		est.DurationSeconds = durationFromSpeed(distanceKm, walkSpeedKmh)
	default:
		return ModeEstimate{}, &NoRouteFoundError{Mode: mode}
	}

	return est, nil
}

func durationFromSpeed(distanceKm, speedKmh float64) int {
	return int(math.Round(distanceKm / speedKmh * 3600))
}
