package transit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"go.uber.org/zap"
)

// Client talks to the GTFS-backed transit planning service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a transit service client.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type stopsResponse struct {
	Stops []struct {
		StopID string  `json:"stop_id"`
		Name   string  `json:"stop_name"`
		Lat    float64 `json:"stop_lat"`
		Lon    float64 `json:"stop_lon"`
	} `json:"stops"`
	Count int `json:"count"`
}

// Stops lists every stop known to the transit service.
func (c *Client) Stops(ctx context.Context) ([]planner.TransitStop, error) {
	var body stopsResponse
	if err := c.getJSON(ctx, c.baseURL+"/transit/stops", &body); err != nil {
		return nil, &planner.ProviderUnavailableError{Provider: "transit", Err: err}
	}

	stops := make([]planner.TransitStop, 0, len(body.Stops))
	for _, s := range body.Stops {
		stops = append(stops, planner.TransitStop{
			ID:         s.StopID,
			Name:       s.Name,
			Coordinate: planner.Coordinate{Lat: s.Lat, Lon: s.Lon},
		})
	}
	return stops, nil
}

// NearestStop finds the stop closest to the coordinate by great-circle
// distance over the full stop list.
func (c *Client) NearestStop(ctx context.Context, coord planner.Coordinate) (planner.TransitStop, error) {
	stops, err := c.Stops(ctx)
	if err != nil {
		return planner.TransitStop{}, err
	}
	if len(stops) == 0 {
		return planner.TransitStop{}, &planner.ProviderUnavailableError{
			Provider: "transit",
			Err:      errors.New("no stops available"),
		}
	}

	nearest := stops[0]
	best := coord.DistanceKm(nearest.Coordinate)
	for _, s := range stops[1:] {
		if d := coord.DistanceKm(s.Coordinate); d < best {
			best = d
			nearest = s
		}
	}
	return nearest, nil
}

type planRequest struct {
	FromStopID    string     `json:"from_stop_id"`
	ToStopID      string     `json:"to_stop_id"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
}

type planResponse struct {
	Connections []struct {
		RouteShortName  string `json:"route_short_name"`
		DurationMinutes int    `json:"duration_minutes"`
		DepartureTime   string `json:"departure_time"`
	} `json:"connections"`
}

// PlanTrip asks the transit service for connections between two stops.
func (c *Client) PlanTrip(ctx context.Context, fromStopID, toStopID string, departure *time.Time) ([]planner.TransitConnection, error) {
	payload, err := json.Marshal(planRequest{
		FromStopID:    fromStopID,
		ToStopID:      toStopID,
		DepartureTime: departure,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal plan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transit/plan", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &planner.ProviderUnavailableError{Provider: "transit", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &planner.ProviderUnavailableError{
			Provider: "transit",
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var body planResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &planner.ProviderUnavailableError{Provider: "transit", Err: err}
	}

	conns := make([]planner.TransitConnection, 0, len(body.Connections))
	for _, conn := range body.Connections {
		conns = append(conns, planner.TransitConnection{
			RouteNumber:     conn.RouteShortName,
			DurationMinutes: conn.DurationMinutes,
			DepartureTime:   conn.DepartureTime,
		})
	}
	return conns, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
