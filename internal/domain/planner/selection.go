package planner

// SelectionPhase identifies where the two-click selection protocol stands.
type SelectionPhase string

const (
	PhaseEmpty    SelectionPhase = "empty"
	PhaseStartSet SelectionPhase = "start_set"
	PhaseBothSet  SelectionPhase = "both_set"
)

// ClickOutcome describes the effect a map click had on the selection state.
type ClickOutcome string

const (
	// OutcomeStartSet means the click became the start endpoint.
	OutcomeStartSet ClickOutcome = "start_set"
	// OutcomeDestinationSet means the click became the destination and a
	// comparison should be fetched for the completed pair.
	OutcomeDestinationSet ClickOutcome = "destination_set"
	// OutcomeRestarted means both endpoints were already set: the click became
	// the new start, the destination was cleared and any prior comparison is
	// to be discarded.
	OutcomeRestarted ClickOutcome = "restarted"
)

// RouteSelectionState is the value object holding the two route anchors.
// Transitions are pure functions returning a new state; a single mutable copy
// is owned by the caller and replaced atomically.
type RouteSelectionState struct {
	Start       *Endpoint `json:"start,omitempty"`
	Destination *Endpoint `json:"destination,omitempty"`
}

// Phase derives the protocol phase from which endpoints are resolved. A
// coordinate from any source (click, text search, saved entity) counts as
// that endpoint being set.
func (s RouteSelectionState) Phase() SelectionPhase {
	switch {
	case s.HasStart() && s.HasDestination():
		return PhaseBothSet
	case s.HasStart():
		return PhaseStartSet
	default:
		return PhaseEmpty
	}
}

// HasStart reports whether the start endpoint is resolved.
func (s RouteSelectionState) HasStart() bool {
	return s.Start != nil && s.Start.Resolved()
}

// HasDestination reports whether the destination endpoint is resolved.
func (s RouteSelectionState) HasDestination() bool {
	return s.Destination != nil && s.Destination.Resolved()
}

// ApplyClick runs one step of the two-click protocol:
//
//	Empty    + click -> StartSet (start := click)
//	StartSet + click -> BothSet  (destination := click, comparison due)
//	BothSet  + click -> StartSet (start := click, destination cleared)
func (s RouteSelectionState) ApplyClick(coord Coordinate, label string) (RouteSelectionState, ClickOutcome) {
	ep := NewEndpoint(coord, label, SourceMapClick)

	switch s.Phase() {
	case PhaseEmpty:
		return RouteSelectionState{Start: &ep}, OutcomeStartSet
	case PhaseStartSet:
		return RouteSelectionState{Start: s.Start, Destination: &ep}, OutcomeDestinationSet
	default:
		return RouteSelectionState{Start: &ep}, OutcomeRestarted
	}
}

// WithStart returns the state with the start endpoint replaced.
func (s RouteSelectionState) WithStart(ep Endpoint) RouteSelectionState {
	return RouteSelectionState{Start: &ep, Destination: s.Destination}
}

// WithDestination returns the state with the destination endpoint replaced.
func (s RouteSelectionState) WithDestination(ep Endpoint) RouteSelectionState {
	return RouteSelectionState{Start: s.Start, Destination: &ep}
}

// WithoutDestination returns the state rolled back to StartSet. Used when a
// destination click led to a failed aggregation so the user can retry.
func (s RouteSelectionState) WithoutDestination() RouteSelectionState {
	return RouteSelectionState{Start: s.Start}
}

// SeedFromSaved returns a BothSet state built from a saved route's endpoints.
func SeedFromSaved(start, destination Coordinate, startLabel, destLabel string) RouteSelectionState {
	s := NewEndpoint(start, startLabel, SourceSavedRoute)
	d := NewEndpoint(destination, destLabel, SourceSavedRoute)
	return RouteSelectionState{Start: &s, Destination: &d}
}
