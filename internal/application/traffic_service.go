package application

import (
	"context"
	"math"
	"time"

	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"go.uber.org/zap"
)

const (
	// At most this many flow lookups per route keeps provider usage bounded.
	maxFlowSamples = 20
	// Requests more than this far from the wall clock cannot be answered by
	// the live provider and go to simulation.
	liveFlowWindow = 15 * time.Minute
)

// TrafficService colorizes car route geometry by flow conditions. It prefers
// the live flow provider and degrades to simulation, then to no coloring at
// all; colorization never fails a comparison.
type TrafficService struct {
	flow      planner.TrafficFlowProvider
	simulated planner.TrafficFlowProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewTrafficService creates a traffic service. Either provider may be nil.
func NewTrafficService(flow, simulated planner.TrafficFlowProvider, logger *zap.Logger) *TrafficService {
	return &TrafficService{
		flow:      flow,
		simulated: simulated,
		logger:    logger,
		now:       time.Now,
	}
}

// Colorize splits the route geometry into consecutively colored segments.
// A nil requestedTime means current conditions. The result is empty when no
// flow data could be obtained.
func (s *TrafficService) Colorize(ctx context.Context, geometry []planner.Coordinate, requestedTime *time.Time) []planner.TrafficSegment {
	if len(geometry) == 0 {
		return nil
	}

	sampled := samplePoints(geometry, maxFlowSamples)

	points, err := s.fetchFlow(ctx, sampled, requestedTime)
	if err != nil {
		s.logger.Warn("traffic flow unavailable, returning uncolored route", zap.Error(err))
		return nil
	}
	if len(points) == 0 {
		return nil
	}

	return interpolateSegments(geometry, points)
}

func (s *TrafficService) fetchFlow(ctx context.Context, sampled []planner.Coordinate, requestedTime *time.Time) ([]planner.FlowPoint, error) {
	if requestedTime != nil && absDuration(s.now().Sub(*requestedTime)) > liveFlowWindow {
		// Live flow has no notion of past or future conditions.
		if s.simulated == nil {
			return nil, &planner.ProviderUnavailableError{Provider: "simulated-flow"}
		}
		return s.simulated.Flow(ctx, sampled, requestedTime)
	}

	if s.flow != nil {
		points, err := s.flow.Flow(ctx, sampled, nil)
		if err == nil {
			return points, nil
		}
		if s.simulated == nil {
			return nil, err
		}
		s.logger.Warn("live flow provider failed, falling back to simulation", zap.Error(err))
	}

	if s.simulated == nil {
		return nil, &planner.ProviderUnavailableError{Provider: "flow"}
	}
	return s.simulated.Flow(ctx, sampled, requestedTime)
}

// samplePoints takes evenly spaced points along the geometry, at most max.
func samplePoints(geometry []planner.Coordinate, max int) []planner.Coordinate {
	if len(geometry) <= max {
		return geometry
	}
	step := len(geometry) / max
	sampled := make([]planner.Coordinate, 0, max+1)
	for i := 0; i < len(geometry); i += step {
		sampled = append(sampled, geometry[i])
	}
	return sampled
}

// interpolateSegments assigns every geometry point the color of its nearest
// sampled flow point and merges consecutive same-color runs. Segment
// boundaries share the boundary coordinate so the drawn line stays
// continuous.
func interpolateSegments(geometry []planner.Coordinate, points []planner.FlowPoint) []planner.TrafficSegment {
	segments := make([]planner.TrafficSegment, 0, 4)
	current := planner.TrafficSegment{ColorLevel: planner.ColorGreen}

	for _, coord := range geometry {
		color := planner.ColorForSpeedRatio(nearestFlowPoint(coord, points).SpeedRatio)

		switch {
		case current.ColorLevel == color:
			current.Coordinates = append(current.Coordinates, coord)
		case len(current.Coordinates) > 0:
			current.Coordinates = append(current.Coordinates, coord)
			segments = append(segments, current)
			current = planner.TrafficSegment{Coordinates: []planner.Coordinate{coord}, ColorLevel: color}
		default:
			current = planner.TrafficSegment{Coordinates: []planner.Coordinate{coord}, ColorLevel: color}
		}
	}
	if len(current.Coordinates) > 0 {
		segments = append(segments, current)
	}
	return segments
}

func nearestFlowPoint(coord planner.Coordinate, points []planner.FlowPoint) planner.FlowPoint {
	nearest := points[0]
	best := math.Inf(1)
	for _, p := range points {
		dLat := coord.Lat - p.Coordinate.Lat
		dLon := coord.Lon - p.Coordinate.Lon
		if d := dLat*dLat + dLon*dLon; d < best {
			best = d
			nearest = p
		}
	}
	return nearest
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
