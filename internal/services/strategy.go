package services

import (
	"context"
	"course-route-service/internal/domain"
	"fmt"
	"sort"
)

// Everything a strategy needs to order one set of places.
type OrderingInput struct {
	Places []domain.Place
	// Matrix must cover every place id; it may list them in any order.
	Matrix *domain.DistanceMatrix
	// Weights default to domain.DefaultWeights when nil.
	Weights *domain.Weights
	// StartLocation anchors the first stop of the heuristic route.
	StartLocation *domain.Coordinates
	// Diversity enables category-aware construction in the heuristic.
	Diversity bool
	// PreferenceScore is the constant preference component; zero means
	// domain.DefaultPreferenceScore.
	PreferenceScore float64
}

// OrderingStrategy produces a visiting order for a set of places.
type OrderingStrategy interface {
	Name() string
	Order(ctx context.Context, in OrderingInput) (*domain.OptimizationResult, error)
}

// StrategyRegistry looks strategies up by name.
type StrategyRegistry struct {
	byName map[string]OrderingStrategy
}

func NewStrategyRegistry(strategies ...OrderingStrategy) *StrategyRegistry {
	r := &StrategyRegistry{byName: make(map[string]OrderingStrategy, len(strategies))}
	for _, s := range strategies {
		r.byName[s.Name()] = s
	}
	return r
}

func (r *StrategyRegistry) Get(name string) (OrderingStrategy, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, domain.NewValidationError("unknown strategy %q (available: %v)", name, r.Names())
	}
	return s, nil
}

// Names lists registered strategies in sorted order.
func (r *StrategyRegistry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// alignMatrix returns a matrix whose index i is places[i]. Duplicate or
// uncovered places are rejected.
func alignMatrix(places []domain.Place, m *domain.DistanceMatrix) (*domain.DistanceMatrix, error) {
	if m == nil {
		return nil, domain.NewValidationError("distance matrix is required")
	}
	if err := m.Validate(); err != nil {
		return nil, domain.NewValidationError("%v", err)
	}

	index := m.IndexByID()
	perm := make([]int, len(places))
	ids := make([]string, len(places))
	seen := make(map[string]struct{}, len(places))

	for i, p := range places {
		if _, dup := seen[p.ID]; dup {
			return nil, domain.NewValidationError("duplicate place id %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		k, ok := index[p.ID]
		if !ok {
			return nil, domain.NewValidationError("place %q is not covered by the distance matrix", p.ID)
		}
		perm[i] = k
		ids[i] = p.ID
	}

	return m.Reindex(perm, ids), nil
}

func weightsOrDefault(w *domain.Weights) domain.Weights {
	if w == nil {
		return domain.DefaultWeights()
	}
	return *w
}

func preferenceOrDefault(p float64) float64 {
	if p == 0 {
		return domain.DefaultPreferenceScore
	}
	return p
}

// buildResult fills totals and metrics for an order over an aligned matrix.
func buildResult(name string, order []int, places []domain.Place, m *domain.DistanceMatrix, ev *evaluator) *domain.OptimizationResult {
	ordered := make([]domain.Place, len(order))
	for i, idx := range order {
		ordered[i] = places[idx]
	}

	return &domain.OptimizationResult{
		Strategy:             name,
		Order:                append([]int(nil), order...),
		Places:               ordered,
		TotalDistanceMeters:  pathDistance(order, m),
		TotalDurationMinutes: totalMinutes(order, places, m),
		Metrics:              ev.metrics(order),
	}
}

func checkPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("order has %d entries for %d places", len(order), n)
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return fmt.Errorf("order %v is not a permutation of %d places", order, n)
		}
		seen[idx] = true
	}
	return nil
}
