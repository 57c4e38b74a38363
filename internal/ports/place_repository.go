package ports

import (
	"context"
	"course-route-service/internal/domain"
	"errors"
)

// ErrPlaceNotFound is returned when an id cannot be resolved.
var ErrPlaceNotFound = errors.New("place not found")

// Port: a boundary for retrieving Place entities from a data source.
type PlaceRepository interface {
	// Resolve ids to places, preserving the order of ids.
	ResolvePlaces(ctx context.Context, ids []string) ([]domain.Place, error)
	// List every known place.
	ListPlaces(ctx context.Context) ([]domain.Place, error)
}
