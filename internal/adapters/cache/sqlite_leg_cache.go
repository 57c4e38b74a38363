package cache

import (
	"context"
	"course-route-service/internal/ports"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed cache of routed legs. Keys come from ports.LegKey, so
// coordinates are already rounded.
type SqliteLegCache struct {
	DB *sql.DB
}

func NewSqliteLegCache(db *sql.DB) *SqliteLegCache {
	return &SqliteLegCache{DB: db}
}

func (s *SqliteLegCache) Get(ctx context.Context, key string) (ports.RouteLeg, bool, error) {
	if s.DB == nil {
		return ports.RouteLeg{}, false, errors.New("leg cache: db is nil")
	}

	var leg ports.RouteLeg
	err := s.DB.QueryRowContext(ctx, `
	SELECT
        distance_meters,
        duration_seconds
    FROM leg_cache
    WHERE leg_key = ?;
	`, key).Scan(&leg.DistanceMeters, &leg.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteLeg{}, false, nil
	}
	if err != nil {
		return ports.RouteLeg{}, false, fmt.Errorf("get leg cache: query leg_cache table: %w", err)
	}

	return leg, true, nil
}

func (s *SqliteLegCache) Put(ctx context.Context, key string, leg ports.RouteLeg) error {
	if s.DB == nil {
		return errors.New("leg cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert leg cache: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO leg_cache (
        leg_key,
        distance_meters,
        duration_seconds
    )
    VALUES (?, ?, ?);
	`, key, leg.DistanceMeters, leg.DurationSeconds)
	if err != nil {
		return fmt.Errorf("insert leg cache key=%q: %w", key, err)
	}

	return nil
}
