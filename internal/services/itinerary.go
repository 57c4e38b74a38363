package services

import (
	"course-route-service/internal/domain"
	"fmt"
	"math"
)

// AssembleItinerary walks places in order and stamps arrival and departure
// times on an integer-minute clock starting at start. Every stop but the last
// carries the leg to the next stop.
//
// The clock advances by LegMinutes per leg, so the final clock minus start
// equals the result's TotalDurationMinutes.
func AssembleItinerary(places []domain.Place, order []int, m *domain.DistanceMatrix, start domain.Clock) ([]domain.ItineraryEntry, error) {
	aligned, err := alignMatrix(places, m)
	if err != nil {
		return nil, fmt.Errorf("assemble itinerary: %w", err)
	}
	if err := checkPermutation(order, len(places)); err != nil {
		return nil, fmt.Errorf("assemble itinerary: %w", domain.NewValidationError("%v", err))
	}

	entries := make([]domain.ItineraryEntry, 0, len(order))
	clock := start

	for pos, idx := range order {
		p := places[idx]
		entry := domain.ItineraryEntry{
			Place:       p,
			VisitOrder:  pos + 1,
			Arrival:     clock,
			StayMinutes: p.StayMinutes,
			Departure:   clock.Add(p.StayMinutes),
		}

		if pos+1 < len(order) {
			next := order[pos+1]
			seg := segment(aligned, idx, next, places[next])
			entry.TravelToNext = &seg
			clock = clock.Add(p.StayMinutes + seg.DurationMinutes)
		} else {
			clock = clock.Add(p.StayMinutes)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func segment(m *domain.DistanceMatrix, from, to int, dest domain.Place) domain.RouteSegment {
	meters := int(math.Round(m.Distances[from][to]))
	minutes := domain.LegMinutes(m.Durations[from][to])
	return domain.RouteSegment{
		DistanceMeters:  meters,
		DurationMinutes: minutes,
		Mode:            m.Mode,
		Description:     describeLeg(m.Mode, meters, minutes, dest.Name),
	}
}

var legVerbs = map[domain.TransportMode]string{
	domain.ModeWalking: "Walk",
	domain.ModeTransit: "Take transit",
	domain.ModeDriving: "Drive",
	domain.ModeMixed:   "Travel",
}

// describeLeg renders e.g. "Walk 850 m to Cafe Onion (about 12 min)".
func describeLeg(mode domain.TransportMode, meters, minutes int, dest string) string {
	verb, ok := legVerbs[mode]
	if !ok {
		verb = "Travel"
	}
	return fmt.Sprintf("%s %s to %s (about %d min)", verb, formatDistance(meters), dest, minutes)
}

func formatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", meters)
	}
	return fmt.Sprintf("%.1f km", float64(meters)/1000)
}
