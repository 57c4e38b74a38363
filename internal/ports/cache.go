package ports

import (
	"context"
	"course-route-service/internal/domain"
)

// Persistent cache of individual routing answers, keyed by LegKey.
type LegCache interface {
	Get(ctx context.Context, key string) (RouteLeg, bool, error)
	Put(ctx context.Context, key string, leg RouteLeg) error
}

// Cache of complete distance matrices keyed by the canonical place set.
// Stored matrices are treated as immutable by every implementation.
type MatrixCache interface {
	Get(ctx context.Context, key string) (*domain.DistanceMatrix, bool, error)
	Put(ctx context.Context, key string, m *domain.DistanceMatrix) error
}

// LegKey identifies a directed leg for a mode.
func LegKey(origin, destination domain.Coordinates, mode domain.TransportMode) string {
	return origin.Key() + "->" + destination.Key() + "|" + string(mode)
}
