package services

import (
	"course-route-service/internal/domain"
	"testing"
)

func TestAssembleItineraryTimeline(t *testing.T) {
	places := []domain.Place{
		place("a", 0, 0, domain.CategoryCafe, 60),
		place("b", 1, 0, domain.CategoryCulture, 90),
		place("c", 2, 0, domain.CategoryRestaurant, 60),
	}
	m := geoMatrix(places, domain.ModeWalking)
	start, _ := domain.ParseClock("09:00")

	entries, err := AssembleItinerary(places, []int{0, 1, 2}, m, start)
	if err != nil {
		t.Fatalf("AssembleItinerary() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	// 1 km at 1.2 m/s is 833 s, which rounds to 14 minutes.
	wantArrivals := []string{"09:00", "10:14", "11:58"}
	for i, e := range entries {
		if got := e.Arrival.String(); got != wantArrivals[i] {
			t.Fatalf("entry %d arrival = %s, want %s", i, got, wantArrivals[i])
		}
		if e.VisitOrder != i+1 {
			t.Fatalf("entry %d visit order = %d, want %d", i, e.VisitOrder, i+1)
		}
		if e.Departure != e.Arrival.Add(e.StayMinutes) {
			t.Fatalf("entry %d departure = %s, want arrival + stay", i, e.Departure)
		}
	}

	last := entries[2]
	if last.TravelToNext != nil {
		t.Fatalf("last entry has a next leg: %+v", last.TravelToNext)
	}
	if got := last.Departure.String(); got != "12:58" {
		t.Fatalf("end = %s, want 12:58", got)
	}

	leg := entries[0].TravelToNext
	if leg == nil {
		t.Fatalf("first entry has no next leg")
	}
	if leg.DurationMinutes != 14 || leg.Mode != domain.ModeWalking {
		t.Fatalf("leg = %+v, want 14 min walking", leg)
	}
	if leg.DistanceMeters < 990 || leg.DistanceMeters > 1010 {
		t.Fatalf("leg distance = %d, want about 1000", leg.DistanceMeters)
	}
}

func TestAssembleItineraryMatchesScoredDuration(t *testing.T) {
	places := []domain.Place{
		place("a", 0, 0, domain.CategoryCafe, 60),
		place("b", 1, 0, domain.CategoryCulture, 90),
		place("c", 2, 0, domain.CategoryRestaurant, 60),
	}
	m := geoMatrix(places, domain.ModeWalking)
	start, _ := domain.ParseClock("09:00")
	order := []int{0, 1, 2}

	entries, err := AssembleItinerary(places, order, m, start)
	if err != nil {
		t.Fatal(err)
	}
	total := totalMinutes(order, places, m)
	if total != 238 {
		t.Fatalf("total minutes = %d, want 238", total)
	}
	if got := int(entries[len(entries)-1].Departure - start); got != total {
		t.Fatalf("clock span = %d, want %d", got, total)
	}
}

func TestAssembleItineraryRejectsBadOrder(t *testing.T) {
	places := []domain.Place{
		place("a", 0, 0, domain.CategoryCafe, 60),
		place("b", 1, 0, domain.CategoryCulture, 90),
		place("c", 2, 0, domain.CategoryRestaurant, 60),
	}
	m := geoMatrix(places, domain.ModeWalking)

	_, err := AssembleItinerary(places, []int{0, 0, 2}, m, 600)
	if !domain.IsValidation(err) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestDescribeLeg(t *testing.T) {
	cases := []struct {
		mode    domain.TransportMode
		meters  int
		minutes int
		want    string
	}{
		{domain.ModeWalking, 850, 12, "Walk 850 m to Cafe (about 12 min)"},
		{domain.ModeDriving, 4230, 9, "Drive 4.2 km to Cafe (about 9 min)"},
		{domain.ModeTransit, 1000, 3, "Take transit 1.0 km to Cafe (about 3 min)"},
		{domain.ModeMixed, 10, 1, "Travel 10 m to Cafe (about 1 min)"},
	}
	for _, tc := range cases {
		if got := describeLeg(tc.mode, tc.meters, tc.minutes, "Cafe"); got != tc.want {
			t.Fatalf("describeLeg(%s) = %q, want %q", tc.mode, got, tc.want)
		}
	}
}
