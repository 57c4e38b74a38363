package cache

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/logging"
	"course-route-service/internal/ports"
	"errors"
	"fmt"
)

// TieredMatrixCache reads tiers in order and backfills faster tiers on a
// hit further down. Writes go to every tier.
type TieredMatrixCache struct {
	tiers []ports.MatrixCache
}

func NewTieredMatrixCache(tiers ...ports.MatrixCache) *TieredMatrixCache {
	return &TieredMatrixCache{tiers: tiers}
}

func (c *TieredMatrixCache) Get(ctx context.Context, key string) (*domain.DistanceMatrix, bool, error) {
	var errs []error
	for i, tier := range c.tiers {
		m, ok, err := tier.Get(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("tier %d: %w", i, err))
			continue
		}
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			if err := c.tiers[j].Put(ctx, key, m); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Int("tier", j).Msg("matrix cache backfill failed")
			}
		}
		return m, true, nil
	}
	return nil, false, errors.Join(errs...)
}

func (c *TieredMatrixCache) Put(ctx context.Context, key string, m *domain.DistanceMatrix) error {
	var errs []error
	for i, tier := range c.tiers {
		if err := tier.Put(ctx, key, m); err != nil {
			errs = append(errs, fmt.Errorf("tier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
