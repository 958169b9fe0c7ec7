package tomtom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"go.uber.org/zap"
)

const flowZoom = 10

// Client fetches live traffic flow from the TomTom Flow Segment Data API,
// one request per sampled route point.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a TomTom traffic flow client.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type flowResponse struct {
	FlowSegmentData struct {
		CurrentSpeed  float64 `json:"currentSpeed"`
		FreeFlowSpeed float64 `json:"freeFlowSpeed"`
		Confidence    float64 `json:"confidence"`
	} `json:"flowSegmentData"`
}

// Flow queries the flow segment endpoint for each point. Points that fail
// individually are skipped; the call fails only when no point could be
// resolved at all. The simulation time is ignored: this provider always
// reports live conditions.
func (c *Client) Flow(ctx context.Context, points []planner.Coordinate, _ *time.Time) ([]planner.FlowPoint, error) {
	if c.apiKey == "" {
		return nil, &planner.ProviderUnavailableError{
			Provider: "tomtom",
			Err:      errors.New("api key not configured"),
		}
	}
	if len(points) == 0 {
		return nil, nil
	}

	out := make([]planner.FlowPoint, 0, len(points))
	var lastErr error
	for _, p := range points {
		fp, err := c.flowAt(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &planner.ProviderUnavailableError{Provider: "tomtom", Err: ctx.Err()}
			}
			c.log.Debug("flow point skipped", zap.Float64("lat", p.Lat), zap.Float64("lon", p.Lon), zap.Error(err))
			lastErr = err
			continue
		}
		out = append(out, fp)
	}

	if len(out) == 0 {
		return nil, &planner.ProviderUnavailableError{Provider: "tomtom", Err: lastErr}
	}
	return out, nil
}

func (c *Client) flowAt(ctx context.Context, p planner.Coordinate) (planner.FlowPoint, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("point", fmt.Sprintf("%f,%f", p.Lat, p.Lon))
	params.Set("unit", "KMPH")

	u := fmt.Sprintf("%s/traffic/services/4/flowSegmentData/absolute/%d/json?%s", c.baseURL, flowZoom, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return planner.FlowPoint{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return planner.FlowPoint{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return planner.FlowPoint{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var body flowResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return planner.FlowPoint{}, err
	}

	data := body.FlowSegmentData
	ratio := 1.0
	if data.FreeFlowSpeed > 0 {
		ratio = data.CurrentSpeed / data.FreeFlowSpeed
	}

	return planner.FlowPoint{
		Coordinate:    p,
		CurrentSpeed:  data.CurrentSpeed,
		FreeFlowSpeed: data.FreeFlowSpeed,
		SpeedRatio:    ratio,
		Confidence:    data.Confidence,
	}, nil
}
