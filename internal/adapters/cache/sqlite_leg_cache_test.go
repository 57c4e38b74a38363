package cache

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/ports"
	"testing"
)

func TestSqliteLegCacheRoundTrip(t *testing.T) {
	c := NewSqliteLegCache(openTestDB(t))
	ctx := context.Background()

	key := ports.LegKey(
		domain.Coordinates{Lat: 37.5665, Lon: 126.978},
		domain.Coordinates{Lat: 37.57, Lon: 126.99},
		domain.ModeWalking,
	)

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() before Put = ok %v err %v, want miss", ok, err)
	}

	want := ports.RouteLeg{DistanceMeters: 1530.5, DurationSeconds: 1275}
	if err := c.Put(ctx, key, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v err %v, want hit", ok, err)
	}
	if got != want {
		t.Fatalf("Get() = %+v, want %+v", got, want)
	}

	// Put replaces an existing entry.
	want.DurationSeconds = 1300
	if err := c.Put(ctx, key, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got, _, _ := c.Get(ctx, key); got != want {
		t.Fatalf("Get() after replace = %+v, want %+v", got, want)
	}
}

func TestSqliteLegCacheRejectsEmptyKey(t *testing.T) {
	c := NewSqliteLegCache(openTestDB(t))
	if err := c.Put(context.Background(), "  ", ports.RouteLeg{}); err == nil {
		t.Fatalf("Put() with empty key succeeded")
	}
}

func TestSqliteLegCacheNilDB(t *testing.T) {
	c := NewSqliteLegCache(nil)
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatalf("Get() with nil db succeeded")
	}
}
