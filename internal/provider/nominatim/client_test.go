package nominatim

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

func TestShortLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"house number joined with street", "36, Podwislocze, Rzeszow, Podkarpackie, Poland", "Podwislocze 36"},
		{"poi name kept as is", "Galeria Rzeszow, aleja Pilsudskiego, Rzeszow", "Galeria Rzeszow"},
		{"single part", "Rzeszow", "Rzeszow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortLabel(tt.in))
		})
	}
}

func TestSearchBoundedToViewbox(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		require.Equal(t, "trafficwatch-service-planner/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"display_name":"Rynek, Rzeszow","lat":"50.0374","lon":"22.0047"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "21.9,49.9,22.1,50.1", 2*time.Second, zap.NewNop())
	places, err := client.Search(context.Background(), "rynek")
	require.NoError(t, err)

	assert.Equal(t, []string{"21.9,49.9,22.1,50.1"}, gotQuery["viewbox"])
	assert.Equal(t, []string{"1"}, gotQuery["bounded"])
	assert.Equal(t, []string{"5"}, gotQuery["limit"])
	require.Len(t, places, 1)
	assert.Equal(t, "Rynek, Rzeszow", places[0].Label)
	assert.InDelta(t, 50.0374, places[0].Coordinate.Lat, 1e-9)
}

func TestReverseFallsBackToCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "21.9,49.9,22.1,50.1", 2*time.Second, zap.NewNop())
	label, err := client.Reverse(context.Background(), planner.Coordinate{Lat: 50.04123, Lon: 21.99915})
	require.NoError(t, err)
	assert.Equal(t, "50.0412, 21.9991", label)
}

func TestReverseShortensDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name":"12, Grunwaldzka, Rzeszow, Poland"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "21.9,49.9,22.1,50.1", 2*time.Second, zap.NewNop())
	label, err := client.Reverse(context.Background(), planner.Coordinate{Lat: 50.04, Lon: 22.00})
	require.NoError(t, err)
	assert.Equal(t, "Grunwaldzka 12", label)
}
