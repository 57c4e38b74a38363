package services

import (
	"course-route-service/internal/domain"
	"math"
	"sort"
)

const (
	// Minutes a single stop is expected to take in the worst case,
	// travel included.
	minutesBudgetPerPlace = 150.0
	// Variety points lost per consecutive same-category pair.
	sameCategoryPenalty = 30.0
)

// evaluator scores orders of one place set against one aligned matrix.
// The worst-case distance is computed once so repeated scoring stays cheap.
type evaluator struct {
	places     []domain.Place
	m          *domain.DistanceMatrix
	weights    domain.Weights
	preference float64
	worst      float64
}

func newEvaluator(places []domain.Place, m *domain.DistanceMatrix, w domain.Weights, preference float64) (*evaluator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &evaluator{
		places:     places,
		m:          m,
		weights:    w,
		preference: preference,
		worst:      worstCaseDistance(m),
	}, nil
}

func (e *evaluator) metrics(order []int) domain.OptimizationMetrics {
	n := float64(len(order))

	distance := 100.0
	if e.worst > 0 {
		distance = 100 * (1 - pathDistance(order, e.m)/e.worst)
	}
	timeScore := 100 * (1 - float64(totalMinutes(order, e.places, e.m))/(n*minutesBudgetPerPlace))
	variety := math.Max(0, 100-sameCategoryPenalty*float64(sameCategoryTransitions(order, e.places)))

	mt := domain.OptimizationMetrics{
		DistanceScore:   clampScore(distance),
		TimeScore:       clampScore(timeScore),
		VarietyScore:    clampScore(variety),
		PreferenceScore: clampScore(e.preference),
	}

	w := e.weights
	weighted := w.Distance*mt.DistanceScore +
		w.Time*mt.TimeScore +
		w.Variety*mt.VarietyScore +
		w.Preference*mt.PreferenceScore
	mt.OverallScore = clampScore(weighted / w.Sum())

	return mt
}

func (e *evaluator) fitness(order []int) float64 {
	return e.metrics(order).OverallScore
}

// Score computes the metrics of an order. The matrix may list the places in
// any order.
func Score(places []domain.Place, order []int, m *domain.DistanceMatrix, w domain.Weights, preference float64) (domain.OptimizationMetrics, error) {
	aligned, err := alignMatrix(places, m)
	if err != nil {
		return domain.OptimizationMetrics{}, err
	}
	if err := checkPermutation(order, len(places)); err != nil {
		return domain.OptimizationMetrics{}, domain.NewValidationError("%v", err)
	}
	ev, err := newEvaluator(places, aligned, w, preference)
	if err != nil {
		return domain.OptimizationMetrics{}, err
	}
	return ev.metrics(order), nil
}

// pathDistance sums consecutive legs of an open path.
func pathDistance(order []int, m *domain.DistanceMatrix) float64 {
	total := 0.0
	for i := 0; i+1 < len(order); i++ {
		total += m.Distances[order[i]][order[i+1]]
	}
	return total
}

// travelMinutes sums consecutive legs in whole minutes.
func travelMinutes(order []int, m *domain.DistanceMatrix) int {
	total := 0
	for i := 0; i+1 < len(order); i++ {
		total += domain.LegMinutes(m.Durations[order[i]][order[i+1]])
	}
	return total
}

// totalMinutes is stays plus travel, the same figure the itinerary clock advances by.
func totalMinutes(order []int, places []domain.Place, m *domain.DistanceMatrix) int {
	total := travelMinutes(order, m)
	for _, idx := range order {
		total += places[idx].StayMinutes
	}
	return total
}

func sameCategoryTransitions(order []int, places []domain.Place) int {
	count := 0
	for i := 0; i+1 < len(order); i++ {
		if places[order[i]].Category == places[order[i+1]].Category {
			count++
		}
	}
	return count
}

// worstCaseDistance sums the n-1 longest unordered pairs, an upper bound on
// any open path through n places.
func worstCaseDistance(m *domain.DistanceMatrix) float64 {
	n := m.Size()
	if n < 2 {
		return 0
	}

	pairs := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, math.Max(m.Distances[i][j], m.Distances[j][i]))
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(pairs)))

	worst := 0.0
	for _, d := range pairs[:n-1] {
		worst += d
	}
	return worst
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
