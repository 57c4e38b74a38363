package distance

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/ports"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type MockPair struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockRouteProvider answers from a fixed table. Pairs not in the table are
// estimated by Default when set, otherwise they fail. Failures can be
// injected per pair or for every call, and calls are counted.
type MockRouteProvider struct {
	mu      sync.RWMutex
	m       map[string]ports.RouteLeg
	failing map[string]bool
	failAll bool
	delay   time.Duration
	calls   atomic.Int64
	perPair map[string]int
	Default func(origin, destination domain.Coordinates, mode domain.TransportMode) ports.RouteLeg
}

func NewMockRouteProvider(pairs []MockPair) *MockRouteProvider {
	m := make(map[string]ports.RouteLeg, len(pairs))
	for _, p := range pairs {
		m[mockKey(p.From, p.To)] = ports.RouteLeg{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockRouteProvider{
		m:       m,
		failing: make(map[string]bool),
		perPair: make(map[string]int),
	}
}

func mockKey(a, b domain.Coordinates) string { return a.Key() + "->" + b.Key() }

// FailPair makes every call for the directed pair return an error.
func (p *MockRouteProvider) FailPair(from, to domain.Coordinates) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[mockKey(from, to)] = true
}

// FailAll makes every call return an error.
func (p *MockRouteProvider) FailAll(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAll = fail
}

// SetDelay slows every call down, honoring context cancellation.
func (p *MockRouteProvider) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

// Calls returns the total number of Route calls.
func (p *MockRouteProvider) Calls() int { return int(p.calls.Load()) }

// PairCalls returns the number of calls for the directed pair.
func (p *MockRouteProvider) PairCalls(from, to domain.Coordinates) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.perPair[mockKey(from, to)]
}

func (p *MockRouteProvider) Route(ctx context.Context, origin, destination domain.Coordinates, mode domain.TransportMode) (ports.RouteLeg, error) {
	p.calls.Add(1)
	key := mockKey(origin, destination)

	p.mu.Lock()
	p.perPair[key]++
	delay, failAll, failing := p.delay, p.failAll, p.failing[key]
	leg, ok := p.m[key]
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ports.RouteLeg{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	if failAll || failing {
		return ports.RouteLeg{}, fmt.Errorf("mock route %s: %w", key, ports.ErrUpstreamUnavailable)
	}
	if ok {
		return leg, nil
	}
	if p.Default != nil {
		return p.Default(origin, destination, mode), nil
	}
	return ports.RouteLeg{}, fmt.Errorf("missing pair %s: %w", key, ports.ErrUpstreamUnavailable)
}
