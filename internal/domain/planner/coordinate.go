package planner

import (
	"fmt"
	"math"
)

// Coordinate is an immutable (latitude, longitude) pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within geographic bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String formats the coordinate as a "lat, lon" display label. Used as
// the fallback endpoint label when reverse geocoding is unavailable.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// DistanceKm returns the great-circle distance to another coordinate
// in kilometers (Haversine).
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	const earthRadiusKm = 6371.0

	dLat := degreesToRadians(other.Lat - c.Lat)
	dLon := degreesToRadians(other.Lon - c.Lon)

	lat1Rad := degreesToRadians(c.Lat)
	lat2Rad := degreesToRadians(other.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	h := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * h
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
