package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"go.uber.org/zap"
)

var (
	pointA = planner.Coordinate{Lat: 50.0412, Lon: 21.9991}
	pointB = planner.Coordinate{Lat: 50.0300, Lon: 22.0100}
	pointC = planner.Coordinate{Lat: 50.0500, Lon: 21.9800}
)

// fakeRouting serves fixed routes per mode and counts calls.
type fakeRouting struct {
	mu     sync.Mutex
	routes map[planner.Mode]planner.ProviderRoute
	errs   map[planner.Mode]error
	calls  int
}

func newFakeRouting() *fakeRouting {
	return &fakeRouting{
		routes: map[planner.Mode]planner.ProviderRoute{
			planner.ModeCar:  {DistanceKm: 5.0, DurationSeconds: 600, Geometry: []planner.Coordinate{pointA, pointB}},
			planner.ModeBike: {DistanceKm: 4.5, DurationSeconds: 900},
			planner.ModeWalk: {DistanceKm: 4.2, DurationSeconds: 3000},
		},
		errs: map[planner.Mode]error{},
	}
}

func (f *fakeRouting) Route(_ context.Context, mode planner.Mode, _, _ planner.Coordinate) (planner.ProviderRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[mode]; ok {
		return planner.ProviderRoute{}, err
	}
	return f.routes[mode], nil
}

func (f *fakeRouting) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGeocoder struct {
	labels map[planner.Coordinate]string
}

func (f *fakeGeocoder) Search(_ context.Context, _ string) ([]planner.Place, error) {
	return nil, nil
}

func (f *fakeGeocoder) Reverse(_ context.Context, coord planner.Coordinate) (string, error) {
	if label, ok := f.labels[coord]; ok {
		return label, nil
	}
	return coord.String(), nil
}

type fakeTransit struct {
	stops       []planner.TransitStop
	connections []planner.TransitConnection
	err         error
}

func (f *fakeTransit) Stops(_ context.Context) ([]planner.TransitStop, error) {
	return f.stops, f.err
}

func (f *fakeTransit) NearestStop(_ context.Context, coord planner.Coordinate) (planner.TransitStop, error) {
	if f.err != nil {
		return planner.TransitStop{}, f.err
	}
	nearest := f.stops[0]
	best := coord.DistanceKm(nearest.Coordinate)
	for _, s := range f.stops[1:] {
		if d := coord.DistanceKm(s.Coordinate); d < best {
			best = d
			nearest = s
		}
	}
	return nearest, nil
}

func (f *fakeTransit) PlanTrip(_ context.Context, _, _ string, _ *time.Time) ([]planner.TransitConnection, error) {
	return f.connections, f.err
}

type capturedEvent struct {
	Type    string
	Payload any
}

type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) Publish(_ context.Context, eventType, _ string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *capturePublisher) captured() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}

func newTestPlanner(routing *fakeRouting, transit planner.TransitProvider, publisher EventPublisher) *PlannerService {
	congestion := planner.NewCongestionModelWithNoise(func() float64 { return 0 })
	normalizer := planner.NewModeNormalizer(routing, congestion)
	geocoder := &fakeGeocoder{labels: map[planner.Coordinate]string{
		pointA: "Rynek",
		pointB: "Dworzec",
	}}
	return NewPlannerService(normalizer, geocoder, transit, nil, publisher, zap.NewNop())
}

func TestTwoClicksProduceComparison(t *testing.T) {
	routing := newFakeRouting()
	publisher := &capturePublisher{}
	svc := newTestPlanner(routing, nil, publisher)
	ctx := context.Background()

	first, err := svc.ResolveClick(ctx, pointA)
	require.NoError(t, err)
	assert.Equal(t, planner.OutcomeStartSet, first.Outcome)
	assert.Equal(t, "Rynek", first.State.Start.Label)
	assert.Nil(t, first.Comparison)
	assert.Zero(t, routing.callCount(), "no routes fetched before the pair completes")

	second, err := svc.ResolveClick(ctx, pointB)
	require.NoError(t, err)
	assert.Equal(t, planner.OutcomeDestinationSet, second.Outcome)
	require.NotNil(t, second.Comparison)
	assert.Equal(t, 3, routing.callCount(), "one route per mandatory mode")

	car, ok := second.Comparison.Get(planner.ModeCar)
	require.True(t, ok)
	assert.Equal(t, 5.0, car.DistanceKm)
	assert.GreaterOrEqual(t, car.DurationSeconds, 600)

	bike, ok := second.Comparison.Get(planner.ModeBike)
	require.True(t, ok)
	// 4.5 km at 15 km/h.
	assert.Equal(t, 1080, bike.DurationSeconds)

	walk, ok := second.Comparison.Get(planner.ModeWalk)
	require.True(t, ok)
	// 4.2 km at 5 km/h.
	assert.Equal(t, 3024, walk.DurationSeconds)

	events := publisher.captured()
	require.Len(t, events, 1)
	assert.Equal(t, "planner.comparison.computed", events[0].Type)
}

func TestThirdClickRestartsSelection(t *testing.T) {
	svc := newTestPlanner(newFakeRouting(), nil, nil)
	ctx := context.Background()

	_, err := svc.ResolveClick(ctx, pointA)
	require.NoError(t, err)
	_, err = svc.ResolveClick(ctx, pointB)
	require.NoError(t, err)

	third, err := svc.ResolveClick(ctx, pointC)
	require.NoError(t, err)
	assert.Equal(t, planner.OutcomeRestarted, third.Outcome)
	assert.Equal(t, planner.PhaseStartSet, third.State.Phase())
	assert.Nil(t, third.Comparison)

	// The discarded pair's comparison is gone from the session too.
	session := svc.Session()
	assert.Nil(t, session.Comparison)
}

func TestAggregationFailureRollsBackDestination(t *testing.T) {
	routing := newFakeRouting()
	routing.errs[planner.ModeBike] = &planner.ProviderUnavailableError{Provider: "osrm", Err: errors.New("timeout")}
	svc := newTestPlanner(routing, nil, nil)
	ctx := context.Background()

	_, err := svc.ResolveClick(ctx, pointA)
	require.NoError(t, err)

	_, err = svc.ResolveClick(ctx, pointB)
	var aggErr *planner.AggregationFailedError
	require.ErrorAs(t, err, &aggErr)
	assert.Contains(t, aggErr.Failures, planner.ModeBike)

	// Destination rolled back so the next click can retry the pair.
	session := svc.Session()
	assert.Equal(t, planner.PhaseStartSet, session.State.Phase())
	assert.Nil(t, session.Comparison)

	// Retry with the provider recovered.
	delete(routing.errs, planner.ModeBike)
	result, err := svc.ResolveClick(ctx, pointB)
	require.NoError(t, err)
	assert.Equal(t, planner.OutcomeDestinationSet, result.Outcome)
	require.NotNil(t, result.Comparison)
}

func TestTransitFailureDoesNotFailComparison(t *testing.T) {
	svc := newTestPlanner(newFakeRouting(), &fakeTransit{err: errors.New("gtfs down")}, nil)
	ctx := context.Background()

	_, err := svc.ResolveClick(ctx, pointA)
	require.NoError(t, err)
	result, err := svc.ResolveClick(ctx, pointB)
	require.NoError(t, err)

	require.NotNil(t, result.Comparison)
	assert.False(t, result.Comparison.HasTransit())
	assert.Len(t, result.Comparison.Estimates, 3)
}

func TestTransitSplicedInWhenAvailable(t *testing.T) {
	transitProvider := &fakeTransit{
		stops: []planner.TransitStop{
			{ID: "1001", Name: "Rynek", Coordinate: planner.Coordinate{Lat: 50.0410, Lon: 21.9990}},
			{ID: "1002", Name: "Dworzec", Coordinate: planner.Coordinate{Lat: 50.0302, Lon: 22.0102}},
		},
		connections: []planner.TransitConnection{
			{RouteNumber: "18", DurationMinutes: 14},
			{RouteNumber: "5", DurationMinutes: 22},
		},
	}
	svc := newTestPlanner(newFakeRouting(), transitProvider, nil)
	ctx := context.Background()

	_, err := svc.ResolveClick(ctx, pointA)
	require.NoError(t, err)
	result, err := svc.ResolveClick(ctx, pointB)
	require.NoError(t, err)

	transit, ok := result.Comparison.Get(planner.ModeTransit)
	require.True(t, ok)
	assert.Equal(t, "18", transit.RouteNumber)
	assert.Equal(t, 14*60, transit.DurationSeconds)
}

func TestCompareRejectsUnresolvedEndpoint(t *testing.T) {
	routing := newFakeRouting()
	svc := newTestPlanner(routing, nil, nil)

	unresolved := planner.Endpoint{Label: "nowhere", Source: planner.SourceTextSearch}
	resolved := planner.NewEndpoint(pointB, "Dworzec", planner.SourceTextSearch)

	_, _, err := svc.Compare(context.Background(), unresolved, resolved, nil)
	var epErr *planner.InvalidEndpointError
	require.ErrorAs(t, err, &epErr)
	assert.Equal(t, "start", epErr.Which)
	assert.Zero(t, routing.callCount(), "no provider call for an unresolved endpoint")
}

func TestSearchEndpointCompletesPair(t *testing.T) {
	svc := newTestPlanner(newFakeRouting(), nil, nil)
	ctx := context.Background()

	view, err := svc.SetSearchEndpoint(ctx, "start", pointA, "Galeria")
	require.NoError(t, err)
	assert.Equal(t, planner.PhaseStartSet, view.State.Phase())
	assert.Nil(t, view.Comparison)

	// A click then completes the pair (search + click reconciliation).
	result, err := svc.ResolveClick(ctx, pointB)
	require.NoError(t, err)
	assert.Equal(t, planner.OutcomeDestinationSet, result.Outcome)
	require.NotNil(t, result.Comparison)
	assert.Equal(t, planner.SourceTextSearch, result.State.Start.Source)
}

func TestClearResetsSession(t *testing.T) {
	svc := newTestPlanner(newFakeRouting(), nil, nil)
	ctx := context.Background()

	_, err := svc.ResolveClick(ctx, pointA)
	require.NoError(t, err)
	_, err = svc.ResolveClick(ctx, pointB)
	require.NoError(t, err)

	view := svc.Clear()
	assert.Equal(t, planner.PhaseEmpty, view.State.Phase())

	session := svc.Session()
	assert.Nil(t, session.Comparison)
	assert.Nil(t, session.Segments)
}

func TestReplaceComparisonDiscardsStaleGeneration(t *testing.T) {
	svc := newTestPlanner(newFakeRouting(), nil, nil)

	state := planner.SeedFromSaved(pointA, pointB, "Home", "Work")
	gen := svc.SetStateForLoad(state)

	// The user moves on before the background refresh lands.
	_, err := svc.ResolveClick(context.Background(), pointC)
	require.NoError(t, err)

	applied := svc.ReplaceComparison(gen, &planner.RouteComparison{}, nil)
	assert.False(t, applied, "stale refresh must not clobber the new session")

	fresh := svc.SetStateForLoad(state)
	applied = svc.ReplaceComparison(fresh, &planner.RouteComparison{}, nil)
	assert.True(t, applied)
}
