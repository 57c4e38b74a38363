package services

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/geo"
	"fmt"
	"math"
)

const StrategyHeuristic = "heuristic"

// Smallest distance gain (meters) that counts as a 2-opt improvement.
const twoOptEpsilon = 1e-9

// HeuristicStrategy orders places with a greedy construction followed by
// 2-opt local search.
//
// The greedy step minimizes the next leg from the matrix, optionally traded
// off against category variety. 2-opt then reverses segments while the path
// gets strictly shorter. The result is a local optimum, not a global one.
// Output is deterministic for a given input.
type HeuristicStrategy struct {
	// Weights of the diversity-aware greedy score.
	DistanceWeight  float64
	DiversityWeight float64
}

func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{DistanceWeight: 0.6, DiversityWeight: 0.4}
}

func (h *HeuristicStrategy) Name() string { return StrategyHeuristic }

func (h *HeuristicStrategy) Order(ctx context.Context, in OrderingInput) (*domain.OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("heuristic order: %w", err)
	}

	places := in.Places
	if len(places) < 2 {
		return nil, domain.NewValidationError("at least 2 places required, got %d", len(places))
	}

	m, err := alignMatrix(places, in.Matrix)
	if err != nil {
		return nil, err
	}

	ev, err := newEvaluator(places, m, weightsOrDefault(in.Weights), preferenceOrDefault(in.PreferenceScore))
	if err != nil {
		return nil, err
	}

	anchored := in.StartLocation != nil

	var order []int
	if in.Diversity && len(places) > 3 {
		start := 0
		if anchored {
			start = nearestTo(*in.StartLocation, places)
		}
		order = h.diversityGreedy(start, places, m)
	} else if anchored {
		order = greedyFrom(nearestTo(*in.StartLocation, places), m)
	} else {
		order = bestGreedyStart(m)
	}

	order = twoOpt(order, m, anchored)

	return buildResult(h.Name(), order, places, m, ev), nil
}

// nearestTo returns the index of the place closest to loc by great-circle
// distance. Ties keep the earlier index.
func nearestTo(loc domain.Coordinates, places []domain.Place) int {
	best, bestDist := 0, math.Inf(1)
	for i, p := range places {
		if d := geo.Distance(loc, p.Coords()); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// greedyFrom builds a nearest-neighbour path from start on matrix distance.
func greedyFrom(start int, m *domain.DistanceMatrix) []int {
	n := m.Size()
	visited := make([]bool, n)
	order := make([]int, 0, n)

	current := start
	visited[current] = true
	order = append(order, current)

	for len(order) < n {
		next, minDist := -1, math.Inf(1)
		// Strict comparison keeps the lowest index on ties.
		for c := 0; c < n; c++ {
			if !visited[c] && m.Distances[current][c] < minDist {
				next, minDist = c, m.Distances[current][c]
			}
		}
		visited[next] = true
		order = append(order, next)
		current = next
	}
	return order
}

// bestGreedyStart tries every start and keeps the shortest path.
func bestGreedyStart(m *domain.DistanceMatrix) []int {
	var best []int
	bestDist := math.Inf(1)
	for s := 0; s < m.Size(); s++ {
		order := greedyFrom(s, m)
		if d := pathDistance(order, m); d < bestDist {
			best, bestDist = order, d
		}
	}
	return best
}

func (h *HeuristicStrategy) diversityGreedy(start int, places []domain.Place, m *domain.DistanceMatrix) []int {
	n := len(places)
	visited := make([]bool, n)
	order := make([]int, 0, n)

	visited[start] = true
	order = append(order, start)

	for len(order) < n {
		current := order[len(order)-1]
		run := sameCategoryRun(order, places)

		next, bestScore := -1, math.Inf(-1)
		for c := 0; c < n; c++ {
			if visited[c] {
				continue
			}
			km := m.Distances[current][c] / 1000
			bonus := diversityBonus(places[current].Category, places[c].Category, run)
			score := h.DistanceWeight*(1/(1+km)) + h.DiversityWeight*bonus
			if score > bestScore {
				next, bestScore = c, score
			}
		}
		visited[next] = true
		order = append(order, next)
	}
	return order
}

// sameCategoryRun counts how many trailing stops share the last category.
func sameCategoryRun(order []int, places []domain.Place) int {
	last := places[order[len(order)-1]].Category
	run := 0
	for i := len(order) - 1; i >= 0 && places[order[i]].Category == last; i-- {
		run++
	}
	return run
}

// diversityBonus rewards a category change and tapers repeated categories.
func diversityBonus(prev, candidate domain.Category, run int) float64 {
	if candidate != prev {
		return 1.0
	}
	// Picking the candidate extends the run to run+1.
	if run+1 == 2 {
		return 0.7
	}
	return 0.3
}

// twoOpt reverses order[i..j] whenever that strictly shortens the path,
// until a full pass finds no improving move. Position 0 is kept when anchored.
func twoOpt(order []int, m *domain.DistanceMatrix, anchored bool) []int {
	route := append([]int(nil), order...)
	n := len(route)

	first := 0
	if anchored {
		first = 1
	}

	current := pathDistance(route, m)
	improved := true
	for improved {
		improved = false
		for i := first; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				reverse(route, i, j)
				candidate := pathDistance(route, m)
				if candidate < current-twoOptEpsilon {
					current = candidate
					improved = true
					continue
				}
				reverse(route, i, j)
			}
		}
	}
	return route
}

func reverse(route []int, i, j int) {
	for ; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
}
