package planner

// EndpointSource records how an endpoint's coordinate was obtained.
type EndpointSource string

const (
	SourceTextSearch EndpointSource = "textSearch"
	SourceMapClick   EndpointSource = "mapClick"
	SourceSavedPin   EndpointSource = "savedPin"
	SourceSavedRoute EndpointSource = "savedRoute"
)

// Endpoint is one anchor (start or destination) of a route query. An endpoint
// without a coordinate is unresolved and cannot participate in route fetching.
type Endpoint struct {
	Coordinate *Coordinate    `json:"coordinate,omitempty"`
	Label      string         `json:"label"`
	Source     EndpointSource `json:"source"`
}

// NewEndpoint creates a resolved endpoint.
func NewEndpoint(coord Coordinate, label string, source EndpointSource) Endpoint {
	return Endpoint{Coordinate: &coord, Label: label, Source: source}
}

// Resolved reports whether the endpoint carries a coordinate.
func (e Endpoint) Resolved() bool {
	return e.Coordinate != nil
}

// DisplayLabel returns the human-readable label, falling back to the raw
// coordinate when no address label is set.
func (e Endpoint) DisplayLabel() string {
	if e.Label != "" {
		return e.Label
	}
	if e.Coordinate != nil {
		return e.Coordinate.String()
	}
	return ""
}
