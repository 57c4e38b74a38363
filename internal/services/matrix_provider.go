package services

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/geo"
	"course-route-service/internal/logging"
	"course-route-service/internal/metrics"
	"course-route-service/internal/platform/obs"
	"course-route-service/internal/ports"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type MatrixProviderOptions struct {
	// Concurrency bounds in-flight routing calls per matrix build.
	Concurrency int
	// Symmetric issues one routing call per unordered pair and mirrors it.
	Symmetric bool
	// CacheFallback allows matrices with estimated legs to be cached.
	CacheFallback bool
}

func DefaultMatrixProviderOptions() MatrixProviderOptions {
	return MatrixProviderOptions{
		Concurrency:   4,
		Symmetric:     true,
		CacheFallback: true,
	}
}

// MatrixProvider builds pairwise distance and duration matrices.
//
// Each pair is asked of the routing port; any failure for a pair is replaced
// by a great-circle estimate and the matrix is flagged as fallback, so a
// build never fails because of the upstream. Matrices are cached under an
// order-independent key and at most one build per key runs at a time.
type MatrixProvider struct {
	routes ports.RouteProvider
	cache  ports.MatrixCache
	opts   MatrixProviderOptions
	group  singleflight.Group
}

// NewMatrixProvider wires the provider. routes may be nil for geometry-only
// matrices and cache may be nil to disable caching.
func NewMatrixProvider(routes ports.RouteProvider, cache ports.MatrixCache, opts MatrixProviderOptions) *MatrixProvider {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &MatrixProvider{routes: routes, cache: cache, opts: opts}
}

// Matrix returns the matrix for places in the given order.
func (p *MatrixProvider) Matrix(ctx context.Context, places []domain.Place, mode domain.TransportMode) (m *domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "matrix.get")(&err)

	if len(places) < 2 {
		return nil, domain.NewValidationError("at least 2 places required")
	}
	if !mode.Valid() {
		return nil, domain.NewValidationError("invalid transport mode %q", mode)
	}

	canon := canonicalOrder(places)
	key := MatrixCacheKey(places, mode)

	positions := make([]int, len(places))
	for pos, idx := range canon {
		positions[idx] = pos
	}
	ids := make([]string, len(places))
	for i, pl := range places {
		ids[i] = pl.ID
	}

	if cached, ok := p.lookup(ctx, key, len(places)); ok {
		metrics.MatrixCacheRequests.WithLabelValues("hit").Inc()
		return cached.Reindex(positions, ids), nil
	}
	metrics.MatrixCacheRequests.WithLabelValues("miss").Inc()

	canonPlaces := make([]domain.Place, len(canon))
	for pos, idx := range canon {
		canonPlaces[pos] = places[idx]
	}

	// The build outlives any single caller so waiters and the cache still
	// get the result when the first caller goes away.
	buildCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (any, error) {
		// A build for this key may have finished since the lookup above.
		if cached, ok := p.lookup(buildCtx, key, len(canonPlaces)); ok {
			return cached, nil
		}
		built := p.build(buildCtx, canonPlaces, mode)
		p.store(buildCtx, key, built)
		return built, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("matrix: wait for build: %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			metrics.MatrixCacheRequests.WithLabelValues("shared").Inc()
		}
		if res.Err != nil {
			return nil, fmt.Errorf("matrix: build: %w", res.Err)
		}
		return res.Val.(*domain.DistanceMatrix).Reindex(positions, ids), nil
	}
}

func (p *MatrixProvider) lookup(ctx context.Context, key string, n int) (*domain.DistanceMatrix, bool) {
	if p.cache == nil {
		return nil, false
	}
	m, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("matrix cache read failed")
		return nil, false
	}
	if !ok || m.Size() != n {
		return nil, false
	}
	return m, true
}

func (p *MatrixProvider) store(ctx context.Context, key string, m *domain.DistanceMatrix) {
	if p.cache == nil || (m.IsFallback && !p.opts.CacheFallback) {
		return
	}
	if err := p.cache.Put(ctx, key, m); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("matrix cache write failed")
	}
}

// build computes every off-diagonal entry with bounded concurrency.
func (p *MatrixProvider) build(ctx context.Context, places []domain.Place, mode domain.TransportMode) *domain.DistanceMatrix {
	n := len(places)
	m := domain.NewDistanceMatrix(n, mode)
	for i, pl := range places {
		m.PlaceIDs[i] = pl.ID
	}

	var fallback atomic.Bool
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || (p.opts.Symmetric && j < i) {
				continue
			}
			g.Go(func() error {
				leg, estimated := p.leg(ctx, places[i], places[j], mode)
				if estimated {
					fallback.Store(true)
				}
				// Each goroutine owns distinct cells.
				m.Distances[i][j], m.Durations[i][j] = leg.DistanceMeters, leg.DurationSeconds
				if p.opts.Symmetric {
					m.Distances[j][i], m.Durations[j][i] = leg.DistanceMeters, leg.DurationSeconds
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	m.IsFallback = fallback.Load()
	metrics.MatrixBuilds.WithLabelValues(string(mode), strconv.FormatBool(m.IsFallback)).Inc()

	logging.Ctx(ctx).Debug().
		Int("places", n).
		Str("mode", string(mode)).
		Bool("fallback", m.IsFallback).
		Msg("distance matrix built")

	return m
}

// leg asks the routing port for one pair and estimates on any failure.
func (p *MatrixProvider) leg(ctx context.Context, from, to domain.Place, mode domain.TransportMode) (ports.RouteLeg, bool) {
	if p.routes != nil {
		leg, err := p.routes.Route(ctx, from.Coords(), to.Coords(), mode)
		if err == nil && usableLeg(leg) {
			metrics.RouteLegRequests.WithLabelValues("routed").Inc()
			return leg, false
		}
		if err == nil {
			err = fmt.Errorf("unusable leg distance=%v duration=%v", leg.DistanceMeters, leg.DurationSeconds)
		}
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("from", from.ID).
			Str("to", to.ID).
			Str("mode", string(mode)).
			Msg("routing failed, using geometric estimate")
	}

	metrics.RouteLegRequests.WithLabelValues("fallback").Inc()
	meters, seconds := geo.Estimate(from.Coords(), to.Coords(), mode)
	return ports.RouteLeg{DistanceMeters: meters, DurationSeconds: seconds}, true
}

func usableLeg(l ports.RouteLeg) bool {
	ok := func(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }
	return ok(l.DistanceMeters) && ok(l.DurationSeconds)
}

// canonicalOrder returns place indices sorted by rounded coordinates.
func canonicalOrder(places []domain.Place) []int {
	idx := make([]int, len(places))
	keys := make([]string, len(places))
	for i, pl := range places {
		idx[i] = i
		keys[i] = pl.Coords().Key()
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	return idx
}

// MatrixCacheKey identifies a place set and mode independent of order.
func MatrixCacheKey(places []domain.Place, mode domain.TransportMode) string {
	keys := make([]string, len(places))
	for i, pl := range places {
		keys[i] = pl.Coords().Key()
	}
	sort.Strings(keys)
	return string(mode) + "|" + strings.Join(keys, ";")
}
