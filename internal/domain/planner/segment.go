package planner

// ColorLevel classifies the flow conditions of a route sub-stretch for
// rendering.
type ColorLevel string

const (
	ColorGreen  ColorLevel = "green"
	ColorYellow ColorLevel = "yellow"
	ColorOrange ColorLevel = "orange"
	ColorRed    ColorLevel = "red"
)

// TrafficSegment is one colored sub-stretch of a car route. Segments cover
// the route geometry end-to-end and are produced fresh per query because
// flow data is time-sensitive.
type TrafficSegment struct {
	Coordinates []Coordinate `json:"coordinates"`
	ColorLevel  ColorLevel   `json:"color_level"`
}

// ColorForSpeedRatio maps current/free-flow speed to a color level.
func ColorForSpeedRatio(ratio float64) ColorLevel {
	switch {
	case ratio >= 0.8:
		return ColorGreen
	case ratio >= 0.6:
		return ColorYellow
	case ratio >= 0.4:
		return ColorOrange
	default:
		return ColorRed
	}
}
