package handlers

import (
	"course-route-service/internal/api/dto"
	"course-route-service/internal/domain"
	"course-route-service/internal/ports"
	"fmt"
	"net/http"
	"strings"
)

// PlaceHandler exposes read-only place retrieval endpoints.
type PlaceHandler struct {
	Repo ports.PlaceRepository
}

// List returns every stored place, optionally filtered by ?category=.
func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	places, err := h.Repo.ListPlaces(r.Context())
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("list places: %w", err))
		return
	}

	res := dto.ListPlacesResponse{Places: make([]dto.PlaceResponse, 0, len(places))}
	for _, p := range places {
		if category != "" && p.Category != domain.ParseCategory(category) {
			continue
		}
		res.Places = append(res.Places, toPlaceResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toPlaceResponse(p domain.Place) dto.PlaceResponse {
	return dto.PlaceResponse{
		ID:          p.ID,
		Name:        p.Name,
		Lat:         p.Lat,
		Lng:         p.Lng,
		Category:    string(p.Category),
		StayMinutes: p.StayMinutes,
	}
}
