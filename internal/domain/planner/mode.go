package planner

import "fmt"

// Mode is a transport method for a route estimate.
type Mode string

const (
	ModeCar     Mode = "car"
	ModeBike    Mode = "bike"
	ModeWalk    Mode = "walk"
	ModeTransit Mode = "transit"
)

// MandatoryModes are the modes every comparison must resolve. Transit is
// attempted best-effort on top of these.
var MandatoryModes = []Mode{ModeCar, ModeBike, ModeWalk}

// IsValid returns true if the mode is a recognized transport method.
func (m Mode) IsValid() bool {
	switch m {
	case ModeCar, ModeBike, ModeWalk, ModeTransit:
		return true
	}
	return false
}

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// ParseMode converts a string to a Mode, returning an error if invalid.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid transport mode: %s", s)
	}
	return mode, nil
}
