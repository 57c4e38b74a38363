package services

import (
	"context"
	"course-route-service/internal/domain"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"
)

const (
	StrategyGenetic = "genetic"

	MinGeneticPlaces = 3
	MaxGeneticPlaces = 6
)

type GeneticParams struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	Elites         int
	TournamentSize int
}

func DefaultGeneticParams() GeneticParams {
	return GeneticParams{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.2,
		Elites:         5,
		TournamentSize: 3,
	}
}

// RandFactory returns a fresh generator for one optimization run.
type RandFactory func() *rand.Rand

// SeededRand always yields the same sequence, which makes runs reproducible.
func SeededRand(seed uint64) RandFactory {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// TimeSeededRand seeds every run from the wall clock.
func TimeSeededRand() RandFactory {
	return func() *rand.Rand {
		s := uint64(time.Now().UnixNano())
		return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
	}
}

// GeneticStrategy searches visiting orders with a genetic algorithm over
// permutations. Fitness is the overall score of the shared scorer.
type GeneticStrategy struct {
	params  GeneticParams
	newRand RandFactory
}

func NewGeneticStrategy(params GeneticParams, newRand RandFactory) *GeneticStrategy {
	if newRand == nil {
		newRand = TimeSeededRand()
	}
	return &GeneticStrategy{params: params, newRand: newRand}
}

func (g *GeneticStrategy) Name() string { return StrategyGenetic }

func (g *GeneticStrategy) Order(ctx context.Context, in OrderingInput) (*domain.OptimizationResult, error) {
	places := in.Places
	n := len(places)
	if n < MinGeneticPlaces || n > MaxGeneticPlaces {
		return nil, domain.NewValidationError("3 to 6 places required, got %d", n)
	}
	if err := g.validateParams(); err != nil {
		return nil, err
	}

	m, err := alignMatrix(places, in.Matrix)
	if err != nil {
		return nil, err
	}

	ev, err := newEvaluator(places, m, weightsOrDefault(in.Weights), preferenceOrDefault(in.PreferenceScore))
	if err != nil {
		return nil, err
	}

	rng := g.newRand()
	p := g.params

	population := make([][]int, p.PopulationSize)
	for i := range population {
		population[i] = rng.Perm(n)
	}

	for gen := 0; gen < p.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("genetic order: generation %d: %w", gen, err)
		}

		ranked := rank(population, ev)

		next := make([][]int, 0, p.PopulationSize)
		for i := 0; i < p.Elites; i++ {
			next = append(next, ranked[i].order)
		}
		for len(next) < p.PopulationSize {
			a := tournament(ranked, p.TournamentSize, rng)
			b := tournament(ranked, p.TournamentSize, rng)
			child := orderCrossover(a, b, rng)
			if rng.Float64() < p.MutationRate {
				swapMutation(child, rng)
			}
			next = append(next, child)
		}
		population = next
	}

	best := rank(population, ev)[0].order
	return buildResult(g.Name(), best, places, m, ev), nil
}

func (g *GeneticStrategy) validateParams() error {
	p := g.params
	switch {
	case p.PopulationSize < 2:
		return domain.NewValidationError("population size must be at least 2")
	case p.Generations < 1:
		return domain.NewValidationError("generations must be at least 1")
	case p.Elites < 0 || p.Elites >= p.PopulationSize:
		return domain.NewValidationError("elites must be in [0, population size)")
	case p.TournamentSize < 1:
		return domain.NewValidationError("tournament size must be at least 1")
	case p.MutationRate < 0 || p.MutationRate > 1:
		return domain.NewValidationError("mutation rate must be in [0, 1]")
	}
	return nil
}

type individual struct {
	order   []int
	fitness float64
}

// rank evaluates the population and sorts it best first. Equal fitness
// keeps population order.
func rank(population [][]int, ev *evaluator) []individual {
	ranked := make([]individual, len(population))
	for i, order := range population {
		ranked[i] = individual{order: order, fitness: ev.fitness(order)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].fitness > ranked[j].fitness })
	return ranked
}

// tournament samples k individuals with replacement and returns the fittest.
func tournament(ranked []individual, k int, rng *rand.Rand) []int {
	best := ranked[rng.IntN(len(ranked))]
	for i := 1; i < k; i++ {
		c := ranked[rng.IntN(len(ranked))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best.order
}

// orderCrossover copies a random slice of a into the child and fills the
// remaining positions left to right with b's genes in b's order.
func orderCrossover(a, b []int, rng *rand.Rand) []int {
	n := len(a)
	lo, hi := rng.IntN(n), rng.IntN(n)
	if lo > hi {
		lo, hi = hi, lo
	}

	child := make([]int, n)
	used := make([]bool, n)
	for i := lo; i <= hi; i++ {
		child[i] = a[i]
		used[a[i]] = true
	}

	pos := 0
	for _, gene := range b {
		if used[gene] {
			continue
		}
		for pos >= lo && pos <= hi {
			pos++
		}
		child[pos] = gene
		used[gene] = true
		pos++
	}
	return child
}

// swapMutation exchanges two distinct positions.
func swapMutation(order []int, rng *rand.Rand) {
	n := len(order)
	if n < 2 {
		return
	}
	i := rng.IntN(n)
	j := (i + 1 + rng.IntN(n-1)) % n
	order[i], order[j] = order[j], order[i]
}
