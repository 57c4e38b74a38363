package distance

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/ports"
	"errors"
	"testing"
	"time"
)

func TestMockRouteProvider(t *testing.T) {
	p := NewMockRouteProvider([]MockPair{{From: cityHall, To: palace, Meters: 1500, Seconds: 1200}})
	ctx := context.Background()

	leg, err := p.Route(ctx, cityHall, palace, domain.ModeWalking)
	if err != nil || leg.DistanceMeters != 1500 {
		t.Fatalf("Route() = %+v, %v", leg, err)
	}
	if _, err := p.Route(ctx, palace, cityHall, domain.ModeWalking); !errors.Is(err, ports.ErrUpstreamUnavailable) {
		t.Fatalf("missing pair error = %v", err)
	}

	p.FailPair(cityHall, palace)
	if _, err := p.Route(ctx, cityHall, palace, domain.ModeWalking); !errors.Is(err, ports.ErrUpstreamUnavailable) {
		t.Fatalf("failed pair error = %v", err)
	}
	if p.Calls() != 3 || p.PairCalls(cityHall, palace) != 2 {
		t.Fatalf("calls = %d pair = %d, want 3 and 2", p.Calls(), p.PairCalls(cityHall, palace))
	}
}

func TestMockRouteProviderDelayHonorsContext(t *testing.T) {
	p := NewMockRouteProvider(nil)
	p.SetDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Route(ctx, cityHall, palace, domain.ModeWalking); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}
