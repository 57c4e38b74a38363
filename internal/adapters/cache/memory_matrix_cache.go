package cache

import (
	"context"
	"course-route-service/internal/domain"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryMatrixCache is a bounded in-process matrix cache. Entries expire
// after ttl and the least recently used entry is evicted at capacity.
// Stored matrices are shared, never copied; callers must not mutate them.
type MemoryMatrixCache struct {
	lru *expirable.LRU[string, *domain.DistanceMatrix]
}

func NewMemoryMatrixCache(size int, ttl time.Duration) *MemoryMatrixCache {
	return &MemoryMatrixCache{
		lru: expirable.NewLRU[string, *domain.DistanceMatrix](size, nil, ttl),
	}
}

func (c *MemoryMatrixCache) Get(_ context.Context, key string) (*domain.DistanceMatrix, bool, error) {
	m, ok := c.lru.Get(key)
	return m, ok, nil
}

func (c *MemoryMatrixCache) Put(_ context.Context, key string, m *domain.DistanceMatrix) error {
	c.lru.Add(key, m)
	return nil
}

// Len reports the number of live entries.
func (c *MemoryMatrixCache) Len() int {
	return c.lru.Len()
}
