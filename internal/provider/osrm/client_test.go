package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, zap.NewNop()), srv
}

func TestRouteParsesGeoJSONGeometry(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 5037.2,
				"duration": 612.4,
				"geometry": {"coordinates": [[21.9991, 50.0412], [22.0100, 50.0300]]}
			}]
		}`))
	})

	route, err := client.Route(context.Background(), planner.ModeCar,
		planner.Coordinate{Lat: 50.0412, Lon: 21.9991},
		planner.Coordinate{Lat: 50.0300, Lon: 22.0100})
	require.NoError(t, err)

	assert.Contains(t, gotPath, "/route/v1/driving/")
	assert.InDelta(t, 5.0372, route.DistanceKm, 1e-6)
	assert.InDelta(t, 612.4, route.DurationSeconds, 1e-6)
	require.Len(t, route.Geometry, 2)
	// GeoJSON pairs are lon,lat; domain coordinates are lat,lon.
	assert.Equal(t, planner.Coordinate{Lat: 50.0412, Lon: 21.9991}, route.Geometry[0])
}

func TestRouteProfilePerMode(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":1000,"duration":100,"geometry":{"coordinates":[]}}]}`))
	})

	tests := []struct {
		mode    planner.Mode
		profile string
	}{
		{planner.ModeCar, "driving"},
		{planner.ModeBike, "cycling"},
		{planner.ModeWalk, "foot"},
	}
	for _, tt := range tests {
		_, err := client.Route(context.Background(), tt.mode, planner.Coordinate{Lat: 50, Lon: 22}, planner.Coordinate{Lat: 50.1, Lon: 22.1})
		require.NoError(t, err)
		assert.Contains(t, gotPath, "/route/v1/"+tt.profile+"/")
	}
}

func TestRouteNoRouteFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	})

	_, err := client.Route(context.Background(), planner.ModeBike, planner.Coordinate{Lat: 50, Lon: 22}, planner.Coordinate{Lat: 50.1, Lon: 22.1})
	var noRoute *planner.NoRouteFoundError
	require.ErrorAs(t, err, &noRoute)
	assert.Equal(t, planner.ModeBike, noRoute.Mode)
}

func TestRouteServerErrorIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Route(context.Background(), planner.ModeCar, planner.Coordinate{Lat: 50, Lon: 22}, planner.Coordinate{Lat: 50.1, Lon: 22.1})
	var unavailable *planner.ProviderUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "osrm", unavailable.Provider)
}

func TestRouteTransitModeUnsupported(t *testing.T) {
	client := NewClient("http://localhost:1", time.Second, zap.NewNop())

	_, err := client.Route(context.Background(), planner.ModeTransit, planner.Coordinate{Lat: 50, Lon: 22}, planner.Coordinate{Lat: 50.1, Lon: 22.1})
	var noRoute *planner.NoRouteFoundError
	require.ErrorAs(t, err, &noRoute)
}
