package cache

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const redisMatrixPrefix = "course:matrix:"

// RedisMatrixCache shares computed matrices between service instances.
// Values are JSON with a TTL.
type RedisMatrixCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisMatrixCache(client redis.UniversalClient, ttl time.Duration) *RedisMatrixCache {
	return &RedisMatrixCache{client: client, ttl: ttl}
}

func (c *RedisMatrixCache) Get(ctx context.Context, key string) (_ *domain.DistanceMatrix, _ bool, err error) {
	defer obs.Time(ctx, "matrix.redis.Get")(&err)

	b, err := c.client.Get(ctx, redisMatrixPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis matrix cache: get: %w", err)
	}

	var m domain.DistanceMatrix
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false, fmt.Errorf("redis matrix cache: decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, false, fmt.Errorf("redis matrix cache: stored value: %w", err)
	}

	return &m, true, nil
}

func (c *RedisMatrixCache) Put(ctx context.Context, key string, m *domain.DistanceMatrix) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("redis matrix cache: encode: %w", err)
	}
	if err := c.client.Set(ctx, redisMatrixPrefix+key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis matrix cache: set: %w", err)
	}
	return nil
}
