package planner

import (
	"fmt"
	"sort"
	"strings"
)

// ProviderUnavailableError indicates an external provider call failed with a
// network error, timeout or non-success response.
type ProviderUnavailableError struct {
	Provider string
	Err      error
}

// Error returns the error message.
func (e *ProviderUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s unavailable", e.Provider)
}

// Unwrap returns the underlying cause.
func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// NoRouteFoundError indicates a provider responded successfully but returned
// zero candidate routes.
type NoRouteFoundError struct {
	Mode Mode
}

// Error returns the error message.
func (e *NoRouteFoundError) Error() string {
	return fmt.Sprintf("no %s route found between the requested points", e.Mode)
}

// AggregationFailedError indicates one or more mandatory mode estimates
// could not be produced; no partial comparison is returned in that case.
type AggregationFailedError struct {
	Failures map[Mode]error
}

// Error returns the error message listing the failed modes.
func (e *AggregationFailedError) Error() string {
	modes := make([]string, 0, len(e.Failures))
	for m := range e.Failures {
		modes = append(modes, string(m))
	}
	sort.Strings(modes)
	return fmt.Sprintf("route aggregation failed for modes: %s", strings.Join(modes, ", "))
}

// Unwrap exposes the per-mode causes for errors.Is/As chains.
func (e *AggregationFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		errs = append(errs, err)
	}
	return errs
}

// InvalidEndpointError indicates an operation was invoked with an endpoint
// that has no resolved coordinate.
type InvalidEndpointError struct {
	Which string
}

// Error returns the error message.
func (e *InvalidEndpointError) Error() string {
	return fmt.Sprintf("%s endpoint is not resolved to a coordinate", e.Which)
}
