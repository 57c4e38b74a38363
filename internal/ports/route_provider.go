package ports

import (
	"context"
	"course-route-service/internal/domain"
	"errors"
)

// ErrUpstreamUnavailable marks a routing failure for a single pair.
// The matrix provider recovers from it locally; it never reaches callers.
var ErrUpstreamUnavailable = errors.New("routing upstream unavailable")

// Distance and travel duration of one leg between two locations.
type RouteLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for the third-party routing API.
type RouteProvider interface {
	// Return travel distance and duration from origin to destination.
	Route(ctx context.Context, origin, destination domain.Coordinates, mode domain.TransportMode) (RouteLeg, error)
}
