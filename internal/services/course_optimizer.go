package services

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/logging"
	"course-route-service/internal/metrics"
	"course-route-service/internal/platform/obs"
	"course-route-service/internal/ports"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinCoursePlaces = 3
	MaxCoursePlaces = 6
)

// MatrixSource yields a distance matrix indexed in the order of places.
type MatrixSource interface {
	Matrix(ctx context.Context, places []domain.Place, mode domain.TransportMode) (*domain.DistanceMatrix, error)
}

type CourseDefaults struct {
	Strategy        string
	StartTime       domain.Clock
	PreferenceScore float64
}

type OptimizeCourseRequest struct {
	// Either PlaceIDs (resolved through the repository) or Places.
	PlaceIDs      []string
	Places        []domain.Place
	Mode          domain.TransportMode
	StartTime     *domain.Clock
	StartLocation *domain.Coordinates
	Weights       *domain.Weights
	Strategy      string
	Diversity     bool
}

// A timed course ready to be returned to the caller.
type CoursePlan struct {
	Result     *domain.OptimizationResult
	Itinerary  []domain.ItineraryEntry
	Mode       domain.TransportMode
	StartTime  domain.Clock
	EndTime    domain.Clock
	IsFallback bool
}

// CourseOptimizer runs validate, matrix, order and itinerary for one request.
type CourseOptimizer struct {
	places     ports.PlaceRepository
	matrices   MatrixSource
	strategies *StrategyRegistry
	defaults   CourseDefaults
}

func NewCourseOptimizer(places ports.PlaceRepository, matrices MatrixSource, strategies *StrategyRegistry, defaults CourseDefaults) *CourseOptimizer {
	if defaults.Strategy == "" {
		defaults.Strategy = StrategyHeuristic
	}
	return &CourseOptimizer{
		places:     places,
		matrices:   matrices,
		strategies: strategies,
		defaults:   defaults,
	}
}

func (o *CourseOptimizer) Optimize(ctx context.Context, req OptimizeCourseRequest) (plan *CoursePlan, err error) {
	defer obs.Time(ctx, "course.optimize")(&err)

	places, err := o.resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("optimize course: %w", err)
	}
	if err := validateCourse(places, req); err != nil {
		return nil, fmt.Errorf("optimize course: %w", err)
	}

	name := strings.TrimSpace(req.Strategy)
	if name == "" {
		name = o.defaults.Strategy
	}
	strategy, err := o.strategies.Get(name)
	if err != nil {
		return nil, fmt.Errorf("optimize course: %w", err)
	}

	matrix, err := o.matrices.Matrix(ctx, places, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("optimize course: distance matrix: %w", err)
	}

	started := time.Now()
	result, err := strategy.Order(ctx, OrderingInput{
		Places:          places,
		Matrix:          matrix,
		Weights:         req.Weights,
		StartLocation:   req.StartLocation,
		Diversity:       req.Diversity,
		PreferenceScore: o.defaults.PreferenceScore,
	})
	if err != nil {
		return nil, fmt.Errorf("optimize course: %s order: %w", name, err)
	}
	metrics.RecordOptimization(name, time.Since(started), result.Metrics.OverallScore)

	start := o.defaults.StartTime
	if req.StartTime != nil {
		start = *req.StartTime
	}

	itinerary, err := AssembleItinerary(places, result.Order, matrix, start)
	if err != nil {
		return nil, fmt.Errorf("optimize course: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("strategy", name).
		Str("mode", string(req.Mode)).
		Int("places", len(places)).
		Float64("overall", result.Metrics.OverallScore).
		Bool("fallback", matrix.IsFallback).
		Msg("course optimized")

	return &CoursePlan{
		Result:     result,
		Itinerary:  itinerary,
		Mode:       req.Mode,
		StartTime:  start,
		EndTime:    start.Add(result.TotalDurationMinutes),
		IsFallback: matrix.IsFallback,
	}, nil
}

func (o *CourseOptimizer) resolve(ctx context.Context, req OptimizeCourseRequest) ([]domain.Place, error) {
	if len(req.Places) > 0 {
		return req.Places, nil
	}
	if len(req.PlaceIDs) == 0 {
		return nil, domain.NewValidationError("place ids are required")
	}
	if err := rejectDuplicateIDs(req.PlaceIDs); err != nil {
		return nil, err
	}
	if o.places == nil {
		return nil, errors.New("place repository is not configured")
	}

	places, err := o.places.ResolvePlaces(ctx, req.PlaceIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve places: %w", err)
	}
	return places, nil
}

func validateCourse(places []domain.Place, req OptimizeCourseRequest) error {
	if n := len(places); n < MinCoursePlaces || n > MaxCoursePlaces {
		return domain.NewValidationError("3 to 6 places required, got %d", n)
	}
	if !req.Mode.Valid() {
		return domain.NewValidationError("invalid transport mode %q", req.Mode)
	}
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			return err
		}
	}

	ids := make([]string, len(places))
	for i, p := range places {
		if strings.TrimSpace(p.ID) == "" {
			return domain.NewValidationError("place at position %d has no id", i)
		}
		if p.StayMinutes < 0 {
			return domain.NewValidationError("place %q has negative stay", p.ID)
		}
		if err := p.Coords().Validate(); err != nil {
			return domain.NewValidationError("place %q: %v", p.ID, err)
		}
		ids[i] = p.ID
	}
	return rejectDuplicateIDs(ids)
}

func rejectDuplicateIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return domain.NewValidationError("duplicate place id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
