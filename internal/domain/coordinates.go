package domain

import (
	"fmt"
	"math"
)

// CoordinatePrecision is the number of decimals used when coordinates are
// turned into cache keys (~0.1 m).
const CoordinatePrecision = 6

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Key renders the coordinates rounded to CoordinatePrecision decimals.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.*f,%.*f", CoordinatePrecision, RoundCoordinate(c.Lat), CoordinatePrecision, RoundCoordinate(c.Lon))
}

// RoundCoordinate rounds a single lat or lng value to CoordinatePrecision decimals.
func RoundCoordinate(v float64) float64 {
	p := math.Pow10(CoordinatePrecision)
	return math.Round(v*p) / p
}

// Validate rejects out-of-range or non-finite coordinates.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return NewValidationError("coordinates must be finite")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return NewValidationError("latitude %g out of range", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return NewValidationError("longitude %g out of range", c.Lon)
	}
	return nil
}
