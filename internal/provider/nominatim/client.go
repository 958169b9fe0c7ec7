package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"go.uber.org/zap"
)

const userAgent = "trafficwatch-service-planner/1.0"

var leadingDigits = regexp.MustCompile(`^\d+`)

// Client is a Nominatim geocoding client. Forward searches are bounded to the
// configured viewbox so results stay inside the serviced city area.
type Client struct {
	baseURL    string
	viewbox    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a Nominatim client bounded to the given viewbox
// ("lonMin,latMin,lonMax,latMax").
func NewClient(baseURL, viewbox string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		viewbox:    viewbox,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search resolves free text into candidate places, at most five, restricted
// to the viewbox.
func (c *Client) Search(ctx context.Context, query string) ([]planner.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("viewbox", c.viewbox)
	params.Set("bounded", "1")
	params.Set("limit", "5")

	var results []searchResult
	if err := c.get(ctx, c.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, &planner.ProviderUnavailableError{Provider: "nominatim", Err: err}
	}

	places := make([]planner.Place, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		places = append(places, planner.Place{
			Label:      r.DisplayName,
			Coordinate: planner.Coordinate{Lat: lat, Lon: lon},
		})
	}
	return places, nil
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
}

// Reverse resolves a coordinate into a short display label. The full
// Nominatim address is cut down to the most specific part; a leading house
// number is moved behind the street name ("Podwislocze 36"). On any failure
// the raw coordinate is returned as the label so a click never blocks on
// geocoding.
func (c *Client) Reverse(ctx context.Context, coord planner.Coordinate) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", fmt.Sprintf("%f", coord.Lat))
	params.Set("lon", fmt.Sprintf("%f", coord.Lon))

	var result reverseResult
	if err := c.get(ctx, c.baseURL+"/reverse?"+params.Encode(), &result); err != nil {
		c.log.Debug("reverse geocode failed, using coordinate label", zap.Error(err))
		return coord.String(), nil
	}
	if result.DisplayName == "" {
		return coord.String(), nil
	}
	return ShortLabel(result.DisplayName), nil
}

// ShortLabel reduces a full Nominatim display name to its leading part,
// joining a leading house number with the street that follows it.
func ShortLabel(displayName string) string {
	parts := strings.Split(displayName, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 && leadingDigits.MatchString(parts[0]) {
		return parts[1] + " " + parts[0]
	}
	return parts[0]
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

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
