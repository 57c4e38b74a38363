// Package geo estimates travel between two coordinates without any network
// access. It backs the distance matrix whenever the routing API cannot
// answer for a pair.
package geo

import (
	"course-route-service/internal/domain"
	"math"
)

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6_371_000.0

// MinLegSeconds keeps estimated legs from collapsing to zero time.
const MinLegSeconds = 60.0

// Average speeds in meters per second.
var speeds = map[domain.TransportMode]float64{
	domain.ModeWalking: 1.2,
	domain.ModeTransit: 8.3,
	domain.ModeDriving: 11.1,
	domain.ModeMixed:   5.0,
}

// Speed returns the average speed for a mode. Unknown modes use the mixed speed.
func Speed(mode domain.TransportMode) float64 {
	if s, ok := speeds[mode]; ok {
		return s
	}
	return speeds[domain.ModeMixed]
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b domain.Coordinates) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLat := lat2 - lat1
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(math.Min(1, h)))
}

// Duration estimates travel time in seconds for a distance and mode,
// never less than MinLegSeconds.
func Duration(distanceMeters float64, mode domain.TransportMode) float64 {
	return math.Max(distanceMeters/Speed(mode), MinLegSeconds)
}

// Estimate returns both distance and duration for a pair.
func Estimate(a, b domain.Coordinates, mode domain.TransportMode) (meters, seconds float64) {
	meters = Distance(a, b)
	return meters, Duration(meters, mode)
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
