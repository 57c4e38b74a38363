package cache

import (
	"context"
	"course-route-service/internal/platform/obs"
	"course-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLLegCache is a Postgres-backed cache of routed legs keyed by ports.LegKey.
type SQLLegCache struct {
	DB *sql.DB
}

func NewSQLLegCache(db *sql.DB) *SQLLegCache {
	return &SQLLegCache{DB: db}
}

func (s *SQLLegCache) Get(ctx context.Context, key string) (_ ports.RouteLeg, _ bool, err error) {
	defer obs.Time(ctx, "leg.cache.Get")(&err)

	if s.DB == nil {
		return ports.RouteLeg{}, false, errors.New("leg cache: db is nil")
	}

	var leg ports.RouteLeg
	err = s.DB.QueryRowContext(ctx, `
	SELECT distance_meters, duration_seconds
    FROM leg_cache
    WHERE leg_key = $1;
	`, key).Scan(&leg.DistanceMeters, &leg.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteLeg{}, false, nil
	}
	if err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache: query leg_cache table: %w", err)
	}

	return leg, true, nil
}

func (s *SQLLegCache) Put(ctx context.Context, key string, leg ports.RouteLeg) error {
	if s.DB == nil {
		return errors.New("leg cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert leg cache: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO leg_cache (leg_key, distance_meters, duration_seconds)
    VALUES ($1, $2, $3)
	ON CONFLICT (leg_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`, key, leg.DistanceMeters, leg.DurationSeconds)
	if err != nil {
		return fmt.Errorf("insert leg cache key=%q: %w", key, err)
	}

	return nil
}
