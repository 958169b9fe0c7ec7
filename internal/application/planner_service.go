package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventPublisher abstracts the Kafka publisher for application services.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// ClickResult is the outcome of resolving one map click.
type ClickResult struct {
	Outcome    planner.ClickOutcome        `json:"outcome"`
	State      planner.RouteSelectionState `json:"state"`
	Comparison *planner.RouteComparison    `json:"comparison,omitempty"`
	Segments   []planner.TrafficSegment    `json:"traffic_segments,omitempty"`
}

// SessionView is the read model of the planning session.
type SessionView struct {
	State      planner.RouteSelectionState `json:"state"`
	Comparison *planner.RouteComparison    `json:"comparison,omitempty"`
	Segments   []planner.TrafficSegment    `json:"traffic_segments,omitempty"`
}

// PlannerService orchestrates the interactive planning session: it owns the
// route selection state, runs multi-mode aggregation and keeps the last
// successful comparison for read access.
type PlannerService struct {
	normalizer *planner.ModeNormalizer
	geocoder   planner.GeocodingProvider
	transit    planner.TransitProvider
	traffic    *TrafficService
	publisher  EventPublisher
	logger     *zap.Logger

	mu         sync.Mutex
	state      planner.RouteSelectionState
	comparison *planner.RouteComparison
	segments   []planner.TrafficSegment
	// generation guards against stale aggregation results: any state
	// mutation bumps it and in-flight results for older generations are
	// discarded.
	generation uint64
}

// NewPlannerService creates a planner service. Transit and publisher may be
// nil; both are best-effort channels.
func NewPlannerService(
	normalizer *planner.ModeNormalizer,
	geocoder planner.GeocodingProvider,
	transit planner.TransitProvider,
	traffic *TrafficService,
	publisher EventPublisher,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		normalizer: normalizer,
		geocoder:   geocoder,
		transit:    transit,
		traffic:    traffic,
		publisher:  publisher,
		logger:     logger,
	}
}

// ResolveClick reverse-geocodes the clicked coordinate and advances the
// two-click selection protocol. When the click completes the pair, the
// multi-mode comparison is fetched; if that aggregation fails the destination
// is rolled back so the next click can retry.
func (s *PlannerService) ResolveClick(ctx context.Context, coord planner.Coordinate) (*ClickResult, error) {
	if !coord.Valid() {
		return nil, &planner.InvalidEndpointError{Which: "clicked"}
	}

	label := coord.String()
	if s.geocoder != nil {
		if resolved, err := s.geocoder.Reverse(ctx, coord); err == nil && resolved != "" {
			label = resolved
		}
	}

	s.mu.Lock()
	next, outcome := s.state.ApplyClick(coord, label)
	s.state = next
	s.generation++
	gen := s.generation
	if outcome == planner.OutcomeRestarted {
		// Prior comparison belongs to the discarded pair.
		s.comparison = nil
		s.segments = nil
	}
	s.mu.Unlock()

	result := &ClickResult{Outcome: outcome, State: next}
	if outcome != planner.OutcomeDestinationSet {
		return result, nil
	}

	comparison, segments, err := s.compare(ctx, *next.Start, *next.Destination, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// A newer click won; drop this result on the floor.
		return &ClickResult{Outcome: outcome, State: s.state}, nil
	}
	if err != nil {
		s.state = s.state.WithoutDestination()
		result.State = s.state
		return nil, err
	}

	s.comparison = comparison
	s.segments = segments
	result.State = s.state
	result.Comparison = comparison
	result.Segments = segments
	return result, nil
}

// SetSearchEndpoint sets one endpoint from a text-search selection. When the
// other endpoint is already resolved a comparison is fetched for the pair.
func (s *PlannerService) SetSearchEndpoint(ctx context.Context, which string, coord planner.Coordinate, label string) (*SessionView, error) {
	if !coord.Valid() {
		return nil, &planner.InvalidEndpointError{Which: which}
	}
	return s.SetEndpoint(ctx, which, planner.NewEndpoint(coord, label, planner.SourceTextSearch))
}

// SetEndpoint installs a resolved endpoint (search result, saved pin) as one
// side of the selection. When the pair completes a comparison is fetched.
func (s *PlannerService) SetEndpoint(ctx context.Context, which string, ep planner.Endpoint) (*SessionView, error) {
	if !ep.Resolved() {
		return nil, &planner.InvalidEndpointError{Which: which}
	}

	s.mu.Lock()
	switch which {
	case "start":
		s.state = s.state.WithStart(ep)
	case "destination":
		s.state = s.state.WithDestination(ep)
	default:
		s.mu.Unlock()
		return nil, &planner.InvalidEndpointError{Which: which}
	}
	s.generation++
	gen := s.generation
	state := s.state
	s.mu.Unlock()

	if state.Phase() != planner.PhaseBothSet {
		return &SessionView{State: state}, nil
	}

	comparison, segments, err := s.compare(ctx, *state.Start, *state.Destination, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return &SessionView{State: s.state}, nil
	}
	if err != nil {
		if which == "destination" {
			s.state = s.state.WithoutDestination()
		}
		return nil, err
	}

	s.comparison = comparison
	s.segments = segments
	return &SessionView{State: s.state, Comparison: comparison, Segments: segments}, nil
}

// Compare runs the multi-mode aggregation for an explicit endpoint pair
// without touching the session state. A nil time means "now".
func (s *PlannerService) Compare(ctx context.Context, start, destination planner.Endpoint, at *time.Time) (*planner.RouteComparison, []planner.TrafficSegment, error) {
	return s.compare(ctx, start, destination, at)
}

// Session returns the current selection state and last comparison.
func (s *PlannerService) Session() *SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &SessionView{State: s.state, Comparison: s.comparison, Segments: s.segments}
}

// Clear resets the session to an empty selection.
func (s *PlannerService) Clear() *SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = planner.RouteSelectionState{}
	s.comparison = nil
	s.segments = nil
	s.generation++
	return &SessionView{State: s.state}
}

// ReplaceComparison swaps in a comparison produced outside the click flow
// (background refresh after loading a saved route). The generation check
// keeps a slow refresh from clobbering a newer interaction.
func (s *PlannerService) ReplaceComparison(gen uint64, comparison *planner.RouteComparison, segments []planner.TrafficSegment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.comparison = comparison
	s.segments = segments
	return true
}

// SetStateForLoad installs a seeded state without fetching a comparison,
// returning the generation a background refresh must present to apply its
// result.
func (s *PlannerService) SetStateForLoad(state planner.RouteSelectionState) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.comparison = nil
	s.segments = nil
	s.generation++
	return s.generation
}

func (s *PlannerService) compare(ctx context.Context, start, destination planner.Endpoint, at *time.Time) (*planner.RouteComparison, []planner.TrafficSegment, error) {
	if !start.Resolved() {
		return nil, nil, &planner.InvalidEndpointError{Which: "start"}
	}
	if !destination.Resolved() {
		return nil, nil, &planner.InvalidEndpointError{Which: "destination"}
	}

	from := *start.Coordinate
	to := *destination.Coordinate
	when := time.Now()
	if at != nil {
		when = *at
	}

	estimates := make(map[planner.Mode]planner.ModeEstimate, len(planner.MandatoryModes))
	failures := make(map[planner.Mode]error)
	var estMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, mode := range planner.MandatoryModes {
		g.Go(func() error {
			est, err := s.normalizer.Normalize(gctx, mode, from, to, when)
			estMu.Lock()
			defer estMu.Unlock()
			if err != nil {
				failures[mode] = err
				return nil // collect all failures, never cancel siblings
			}
			estimates[mode] = est
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		s.logger.Warn("route aggregation failed",
			zap.Int("failed_modes", len(failures)),
			zap.Errors("causes", flattenFailures(failures)),
		)
		return nil, nil, &planner.AggregationFailedError{Failures: failures}
	}

	comparison := planner.NewRouteComparison(
		estimates[planner.ModeCar],
		estimates[planner.ModeBike],
		estimates[planner.ModeWalk],
	)

	// Transit is best-effort: failure downgrades to "no transit option".
	if transit, err := s.transitEstimate(ctx, from, to, at); err != nil {
		s.logger.Debug("transit estimate unavailable", zap.Error(err))
	} else {
		comparison.WithTransit(transit)
	}

	var segments []planner.TrafficSegment
	if s.traffic != nil {
		segments = s.traffic.Colorize(ctx, comparison.Car().Geometry, at)
	}

	s.publishComparisonComputed(ctx, from, to, comparison, when)
	return comparison, segments, nil
}

func (s *PlannerService) transitEstimate(ctx context.Context, from, to planner.Coordinate, at *time.Time) (planner.ModeEstimate, error) {
	if s.transit == nil {
		return planner.ModeEstimate{}, errors.New("transit provider not configured")
	}

	fromStop, err := s.transit.NearestStop(ctx, from)
	if err != nil {
		return planner.ModeEstimate{}, fmt.Errorf("nearest stop to start: %w", err)
	}
	toStop, err := s.transit.NearestStop(ctx, to)
	if err != nil {
		return planner.ModeEstimate{}, fmt.Errorf("nearest stop to destination: %w", err)
	}
	if fromStop.ID == toStop.ID {
		return planner.ModeEstimate{}, errors.New("endpoints share the nearest stop")
	}

	connections, err := s.transit.PlanTrip(ctx, fromStop.ID, toStop.ID, at)
	if err != nil {
		return planner.ModeEstimate{}, err
	}
	if len(connections) == 0 {
		return planner.ModeEstimate{}, &planner.NoRouteFoundError{Mode: planner.ModeTransit}
	}

	best := connections[0]
	return planner.ModeEstimate{
		Mode:            planner.ModeTransit,
		DistanceKm:      math.Round(fromStop.Coordinate.DistanceKm(toStop.Coordinate)*10) / 10,
		DurationSeconds: best.DurationMinutes * 60,
		RouteNumber:     best.RouteNumber,
	}, nil
}

func (s *PlannerService) publishComparisonComputed(ctx context.Context, from, to planner.Coordinate, comparison *planner.RouteComparison, when time.Time) {
	if s.publisher == nil {
		return
	}
	car := comparison.Car()
	evt := events.ComparisonComputedEvent{
		Start:          from,
		Destination:    to,
		CarDistanceKm:  car.DistanceKm,
		CarDurationSec: car.DurationSeconds,
		TrafficLevel:   car.TrafficLevel,
		HasTransit:     comparison.HasTransit(),
		RequestedAt:    when.UTC(),
	}
	if err := s.publisher.Publish(ctx, events.TypeComparisonComputed, from.String(), evt); err != nil {
		s.logger.Warn("failed to publish comparison event", zap.Error(err))
	}
}

func flattenFailures(failures map[planner.Mode]error) []error {
	errs := make([]error, 0, len(failures))
	for _, err := range failures {
		errs = append(errs, err)
	}
	return errs
}
