package simulated

import (
	"context"
	"math/rand"
	"time"

	"github.com/trafficwatch/service-planner/internal/domain/planner"
)

const freeFlowSpeedKmh = 50.0

// FlowProvider synthesizes traffic flow from a coarse time-of-day congestion
// profile. It serves simulation requests for times the live provider cannot
// answer, and acts as the fallback when the live provider is down.
type FlowProvider struct {
	noise func() float64
}

// NewFlowProvider creates a simulated flow provider with seeded per-point
// variation.
func NewFlowProvider() *FlowProvider {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &FlowProvider{noise: func() float64 {
		return rng.Float64()*0.3 - 0.15
	}}
}

// NewFlowProviderWithNoise creates a provider with an injected variation
// source for deterministic tests.
func NewFlowProviderWithNoise(noise func() float64) *FlowProvider {
	return &FlowProvider{noise: noise}
}

// Flow produces one synthetic flow point per input point for the given
// simulation time (or now, when absent).
func (f *FlowProvider) Flow(_ context.Context, points []planner.Coordinate, simulationTime *time.Time) ([]planner.FlowPoint, error) {
	at := time.Now()
	if simulationTime != nil {
		at = *simulationTime
	}
	base := CongestionAt(at)

	out := make([]planner.FlowPoint, 0, len(points))
	for _, p := range points {
		congestion := clamp01(base + f.noise())
		ratio := 1.0 - congestion*0.8

		out = append(out, planner.FlowPoint{
			Coordinate:    p,
			CurrentSpeed:  freeFlowSpeedKmh * ratio,
			FreeFlowSpeed: freeFlowSpeedKmh,
			SpeedRatio:    ratio,
			Confidence:    1.0,
		})
	}
	return out, nil
}

// CongestionAt maps a wall-clock time onto a 0..1 congestion scale. It is a
// coarser profile than the drive-time model: flat plateaus per time band
// rather than smooth peaks, which reads better as segment coloring.
func CongestionAt(at time.Time) float64 {
	hour := float64(at.Hour()) + float64(at.Minute())/60.0

	if day := at.Weekday(); day == time.Saturday || day == time.Sunday {
		switch {
		case at.Hour() >= 11 && at.Hour() <= 14:
			return 0.3
		case at.Hour() >= 10 && at.Hour() <= 18:
			return 0.15
		default:
			return 0
		}
	}

	switch {
	case hour >= 7 && hour <= 9:
		if hour >= 7.5 && hour <= 8.5 {
			return 0.8
		}
		return 0.6
	case hour >= 15.5 && hour <= 17.5:
		if hour >= 16 && hour <= 17 {
			return 0.85
		}
		return 0.65
	case hour >= 10 && hour <= 14:
		return 0.2
	case hour >= 18 && hour <= 20:
		return 0.15
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
