package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"go.uber.org/zap"
)

// OSRM profile names per transport mode. Transit has no OSRM profile and is
// served by the transit provider instead.
var profiles = map[planner.Mode]string{
	planner.ModeCar:  "driving",
	planner.ModeBike: "cycling",
	planner.ModeWalk: "foot",
}

// Client fetches routes from an OSRM HTTP instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates an OSRM routing client.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route fetches the best route for the given mode between two coordinates.
func (c *Client) Route(ctx context.Context, mode planner.Mode, from, to planner.Coordinate) (planner.ProviderRoute, error) {
	profile, ok := profiles[mode]
	if !ok {
		return planner.ProviderRoute{}, &planner.NoRouteFoundError{Mode: mode}
	}

	// OSRM takes lon,lat pairs.
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, profile, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return planner.ProviderRoute{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return planner.ProviderRoute{}, &planner.ProviderUnavailableError{Provider: "osrm", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return planner.ProviderRoute{}, &planner.ProviderUnavailableError{
			Provider: "osrm",
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return planner.ProviderRoute{}, &planner.ProviderUnavailableError{Provider: "osrm", Err: err}
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		c.log.Debug("osrm returned no route",
			zap.String("code", body.Code),
			zap.String("profile", profile),
		)
		return planner.ProviderRoute{}, &planner.NoRouteFoundError{Mode: mode}
	}

	best := body.Routes[0]
	geometry := make([]planner.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		geometry = append(geometry, planner.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return planner.ProviderRoute{
		DistanceKm:      best.Distance / 1000.0,
		DurationSeconds: best.Duration,
		Geometry:        geometry,
	}, nil
}
