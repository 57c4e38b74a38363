package handlers

import (
	"context"
	"course-route-service/internal/api/dto"
	"course-route-service/internal/domain"
	"course-route-service/internal/services"
	"course-route-service/internal/validation"
	"math"
	"net/http"
)

// CourseOptimizer is the service the handler drives.
type CourseOptimizer interface {
	Optimize(ctx context.Context, req services.OptimizeCourseRequest) (*services.CoursePlan, error)
}

type CourseHandler struct {
	Optimizer CourseOptimizer
}

// Optimize orders the requested places and returns the timed course.
func (h *CourseHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeCourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	svcReq, err := toServiceRequest(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	plan, err := h.Optimizer.Optimize(r.Context(), svcReq)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toCourseResponse(plan))
}

func toServiceRequest(req dto.OptimizeCourseRequest) (services.OptimizeCourseRequest, error) {
	mode, err := domain.ParseTransportMode(req.TransportMode)
	if err != nil {
		return services.OptimizeCourseRequest{}, err
	}

	out := services.OptimizeCourseRequest{
		PlaceIDs:  req.PlaceIDs,
		Mode:      mode,
		Strategy:  req.Strategy,
		Diversity: req.Diversity,
	}

	for _, p := range req.Places {
		out.Places = append(out.Places, domain.Place{
			ID:          p.ID,
			Name:        p.Name,
			Lat:         p.Lat,
			Lng:         p.Lng,
			Category:    domain.ParseCategory(p.Category),
			StayMinutes: p.StayMinutes,
		})
	}

	if req.StartTime != "" {
		start, err := domain.ParseClock(req.StartTime)
		if err != nil {
			return services.OptimizeCourseRequest{}, err
		}
		out.StartTime = &start
	}
	if req.StartLocation != nil {
		out.StartLocation = &domain.Coordinates{Lat: req.StartLocation.Lat, Lon: req.StartLocation.Lng}
	}
	if req.Weights != nil {
		out.Weights = &domain.Weights{
			Distance:   req.Weights.Distance,
			Time:       req.Weights.Time,
			Variety:    req.Weights.Variety,
			Preference: req.Weights.Preference,
		}
	}

	return out, nil
}

func toCourseResponse(plan *services.CoursePlan) dto.CourseResponse {
	res := plan.Result
	out := dto.CourseResponse{
		Strategy:             res.Strategy,
		TransportMode:        string(plan.Mode),
		StartTime:            plan.StartTime.String(),
		EndTime:              plan.EndTime.String(),
		Order:                make([]string, 0, len(res.Places)),
		TotalDistanceMeters:  int(math.Round(res.TotalDistanceMeters)),
		TotalDurationMinutes: res.TotalDurationMinutes,
		IsFallback:           plan.IsFallback,
		Metrics: dto.MetricsResponse{
			DistanceScore:   res.Metrics.DistanceScore,
			TimeScore:       res.Metrics.TimeScore,
			VarietyScore:    res.Metrics.VarietyScore,
			PreferenceScore: res.Metrics.PreferenceScore,
			OverallScore:    res.Metrics.OverallScore,
		},
		Itinerary: make([]dto.ItineraryEntryResponse, 0, len(plan.Itinerary)),
	}

	for _, p := range res.Places {
		out.Order = append(out.Order, p.ID)
	}

	for _, e := range plan.Itinerary {
		entry := dto.ItineraryEntryResponse{
			VisitOrder:  e.VisitOrder,
			Place:       toPlaceResponse(e.Place),
			ArrivalTime: e.Arrival.String(),
			StayMinutes: e.StayMinutes,
			DepartTime:  e.Departure.String(),
		}
		if seg := e.TravelToNext; seg != nil {
			entry.TravelToNext = &dto.SegmentResponse{
				DistanceMeters:  seg.DistanceMeters,
				DurationMinutes: seg.DurationMinutes,
				TransportMode:   string(seg.Mode),
				Description:     seg.Description,
			}
		}
		out.Itinerary = append(out.Itinerary, entry)
	}

	return out
}
