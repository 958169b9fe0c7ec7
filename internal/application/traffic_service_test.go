package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/provider/simulated"
	"go.uber.org/zap"
)

// fakeFlow serves a fixed speed ratio per point index, or fails entirely.
type fakeFlow struct {
	ratios []float64
	err    error
	calls  int
	gotSim *time.Time
}

func (f *fakeFlow) Flow(_ context.Context, points []planner.Coordinate, simulationTime *time.Time) ([]planner.FlowPoint, error) {
	f.calls++
	f.gotSim = simulationTime
	if f.err != nil {
		return nil, f.err
	}
	out := make([]planner.FlowPoint, len(points))
	for i, p := range points {
		ratio := 1.0
		if i < len(f.ratios) {
			ratio = f.ratios[i]
		}
		out[i] = planner.FlowPoint{Coordinate: p, SpeedRatio: ratio, FreeFlowSpeed: 50, CurrentSpeed: 50 * ratio}
	}
	return out, nil
}

func lineGeometry(n int) []planner.Coordinate {
	geometry := make([]planner.Coordinate, n)
	for i := range geometry {
		geometry[i] = planner.Coordinate{Lat: 50.0, Lon: 21.9 + float64(i)*0.001}
	}
	return geometry
}

func TestColorizeEmptyGeometry(t *testing.T) {
	svc := NewTrafficService(&fakeFlow{}, nil, zap.NewNop())
	assert.Empty(t, svc.Colorize(context.Background(), nil, nil))
}

func TestColorizeFailingProviderWithoutFallbackReturnsEmpty(t *testing.T) {
	flow := &fakeFlow{err: errors.New("quota exceeded")}
	svc := NewTrafficService(flow, nil, zap.NewNop())

	segments := svc.Colorize(context.Background(), lineGeometry(10), nil)
	assert.Empty(t, segments)
	assert.Equal(t, 1, flow.calls)
}

func TestColorizeFallsBackToSimulation(t *testing.T) {
	flow := &fakeFlow{err: errors.New("quota exceeded")}
	sim := simulated.NewFlowProviderWithNoise(func() float64 { return 0 })
	svc := NewTrafficService(flow, sim, zap.NewNop())

	segments := svc.Colorize(context.Background(), lineGeometry(10), nil)
	require.NotEmpty(t, segments)

	total := 0
	for _, seg := range segments {
		total += len(seg.Coordinates)
	}
	assert.GreaterOrEqual(t, total, 10, "segments cover the whole geometry")
}

func TestColorizeSamplesAtMostTwentyPoints(t *testing.T) {
	var sampledCount int
	flow := &countingFlow{onFlow: func(points []planner.Coordinate) { sampledCount = len(points) }}
	svc := NewTrafficService(flow, nil, zap.NewNop())

	svc.Colorize(context.Background(), lineGeometry(500), nil)
	assert.LessOrEqual(t, sampledCount, 25)
	assert.GreaterOrEqual(t, sampledCount, 20)
}

type countingFlow struct {
	onFlow func(points []planner.Coordinate)
}

func (c *countingFlow) Flow(_ context.Context, points []planner.Coordinate, _ *time.Time) ([]planner.FlowPoint, error) {
	c.onFlow(points)
	out := make([]planner.FlowPoint, len(points))
	for i, p := range points {
		out[i] = planner.FlowPoint{Coordinate: p, SpeedRatio: 1.0}
	}
	return out, nil
}

func TestColorizeUsesSimulationForDistantTimes(t *testing.T) {
	live := &fakeFlow{ratios: []float64{1.0}}
	sim := &fakeFlow{ratios: []float64{0.3}}
	svc := NewTrafficService(live, sim, zap.NewNop())

	past := time.Now().Add(-2 * time.Hour)
	segments := svc.Colorize(context.Background(), lineGeometry(5), &past)

	assert.Zero(t, live.calls, "live provider cannot answer for a past time")
	assert.Equal(t, 1, sim.calls)
	require.NotNil(t, sim.gotSim)
	assert.True(t, sim.gotSim.Equal(past))
	require.NotEmpty(t, segments)
	assert.Equal(t, planner.ColorRed, segments[0].ColorLevel)
}

func TestColorizeNearNowUsesLiveProvider(t *testing.T) {
	live := &fakeFlow{ratios: []float64{0.9}}
	sim := &fakeFlow{ratios: []float64{0.3}}
	svc := NewTrafficService(live, sim, zap.NewNop())

	soon := time.Now().Add(5 * time.Minute)
	svc.Colorize(context.Background(), lineGeometry(5), &soon)

	assert.Equal(t, 1, live.calls)
	assert.Zero(t, sim.calls)
}

func TestColorizeMergesSameColorRuns(t *testing.T) {
	// First half free-flowing, second half congested.
	geometry := lineGeometry(10)
	flow := &fakeFlow{ratios: []float64{1.0, 1.0, 1.0, 1.0, 1.0, 0.3, 0.3, 0.3, 0.3, 0.3}}
	svc := NewTrafficService(flow, nil, zap.NewNop())

	segments := svc.Colorize(context.Background(), geometry, nil)
	require.Len(t, segments, 2)

	assert.Equal(t, planner.ColorGreen, segments[0].ColorLevel)
	assert.Equal(t, planner.ColorRed, segments[1].ColorLevel)

	// The boundary coordinate is shared so the drawn line is continuous.
	lastGreen := segments[0].Coordinates[len(segments[0].Coordinates)-1]
	firstRed := segments[1].Coordinates[0]
	assert.Equal(t, lastGreen, firstRed)
}
