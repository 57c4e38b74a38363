package api

import (
	"context"
	"course-route-service/internal/api/dto"
	"course-route-service/internal/domain"
	"course-route-service/internal/ports"
	"course-route-service/internal/services"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

type stubPlaces struct {
	places []domain.Place
}

func (s *stubPlaces) ListPlaces(context.Context) ([]domain.Place, error) {
	return s.places, nil
}

func (s *stubPlaces) ResolvePlaces(_ context.Context, ids []string) ([]domain.Place, error) {
	out := make([]domain.Place, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, p := range s.places {
			if p.ID == id {
				out = append(out, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ports.ErrPlaceNotFound, id)
		}
	}
	return out, nil
}

type stubOptimizer struct {
	err error
}

func (s stubOptimizer) Optimize(context.Context, services.OptimizeCourseRequest) (*services.CoursePlan, error) {
	return nil, s.err
}

func seoulPlaces() []domain.Place {
	return []domain.Place{
		{ID: "cafe-onion", Name: "Cafe Onion", Lat: 37.5447, Lng: 127.0557, Category: domain.CategoryCafe, StayMinutes: 45},
		{ID: "seoul-forest", Name: "Seoul Forest", Lat: 37.5444, Lng: 127.0374, Category: domain.CategoryNature, StayMinutes: 60},
		{ID: "ttukseom", Name: "Ttukseom Park", Lat: 37.5311, Lng: 127.0666, Category: domain.CategoryNature, StayMinutes: 45},
		{ID: "seongsu-bar", Name: "Seongsu Bar", Lat: 37.5425, Lng: 127.0565, Category: domain.CategoryBar, StayMinutes: 90},
	}
}

func newTestRouter() http.Handler {
	repo := &stubPlaces{places: seoulPlaces()}
	registry := services.NewStrategyRegistry(
		services.NewHeuristicStrategy(),
		services.NewGeneticStrategy(services.DefaultGeneticParams(), services.SeededRand(1)),
	)
	matrices := services.NewMatrixProvider(nil, nil, services.DefaultMatrixProviderOptions())
	optimizer := services.NewCourseOptimizer(repo, matrices, registry, services.CourseDefaults{StartTime: 600})
	return NewRouter(Deps{Places: repo, Optimizer: optimizer})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}
	if ready := do(t, newTestRouter(), http.MethodGet, "/ready", ""); ready.Code != http.StatusOK {
		t.Fatalf("ready status = %d, want 200", ready.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("%s = %q, want abc-123", requestIDHeader, got)
	}
}

func TestListPlaces(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/v1/places?category=nature", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res dto.ListPlacesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Places) != 2 {
		t.Fatalf("places = %d, want 2", len(res.Places))
	}
	for _, p := range res.Places {
		if p.Category != "nature" {
			t.Fatalf("category = %q, want nature", p.Category)
		}
	}
}

func TestOptimizeCourseByIDs(t *testing.T) {
	body := `{"place_ids": ["cafe-onion", "seoul-forest", "ttukseom", "seongsu-bar"], "transport_mode": "walking", "start_time": "11:30"}`
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/courses/optimize", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var res dto.CourseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Strategy != services.StrategyHeuristic || res.TransportMode != "walking" {
		t.Fatalf("strategy/mode = %s/%s", res.Strategy, res.TransportMode)
	}
	if res.StartTime != "11:30" {
		t.Fatalf("start = %s, want 11:30", res.StartTime)
	}
	if len(res.Order) != 4 || len(res.Itinerary) != 4 {
		t.Fatalf("order = %v, itinerary = %d", res.Order, len(res.Itinerary))
	}
	for i, e := range res.Itinerary {
		if e.Place.ID != res.Order[i] {
			t.Fatalf("itinerary[%d] = %s, want %s", i, e.Place.ID, res.Order[i])
		}
	}
	if res.Itinerary[3].TravelToNext != nil || res.Itinerary[0].TravelToNext == nil {
		t.Fatalf("travel segments misplaced")
	}
	if res.Itinerary[3].DepartTime != res.EndTime {
		t.Fatalf("last departure %s != end %s", res.Itinerary[3].DepartTime, res.EndTime)
	}
	if !res.IsFallback {
		t.Fatalf("is_fallback = false without a routing provider")
	}
	if res.Metrics.OverallScore < 0 || res.Metrics.OverallScore > 100 {
		t.Fatalf("overall = %v", res.Metrics.OverallScore)
	}
}

func TestOptimizeCourseInlinePlaces(t *testing.T) {
	body := `{
		"places": [
			{"id": "a", "name": "A", "lat": 37.5665, "lng": 126.978, "category": "cafe", "stay_minutes": 30},
			{"id": "b", "name": "B", "lat": 37.57, "lng": 126.98, "category": "culture", "stay_minutes": 60},
			{"id": "c", "name": "C", "lat": 37.56, "lng": 126.99, "category": "bar", "stay_minutes": 60}
		],
		"transport_mode": "driving",
		"strategy": "genetic",
		"start_location": {"lat": 37.5665, "lng": 126.978},
		"weights": {"distance": 1, "time": 1, "variety": 0, "preference": 0}
	}`
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/courses/optimize", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var res dto.CourseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Strategy != services.StrategyGenetic || res.StartTime != "10:00" {
		t.Fatalf("strategy = %s start = %s", res.Strategy, res.StartTime)
	}
}

func TestOptimizeCourseErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"too few", `{"place_ids": ["cafe-onion", "ttukseom"], "transport_mode": "walking"}`, http.StatusBadRequest},
		{"duplicates", `{"place_ids": ["cafe-onion", "cafe-onion", "ttukseom"], "transport_mode": "walking"}`, http.StatusBadRequest},
		{"bad mode", `{"place_ids": ["cafe-onion", "seoul-forest", "ttukseom"], "transport_mode": "bike"}`, http.StatusBadRequest},
		{"bad start", `{"place_ids": ["cafe-onion", "seoul-forest", "ttukseom"], "transport_mode": "walking", "start_time": "9am"}`, http.StatusBadRequest},
		{"unknown field", `{"place_ids": ["cafe-onion", "seoul-forest", "ttukseom"], "transport_mode": "walking", "extra": 1}`, http.StatusBadRequest},
		{"two objects", `{"transport_mode": "walking"}{}`, http.StatusBadRequest},
		{"no places", `{"transport_mode": "walking"}`, http.StatusBadRequest},
		{"unknown strategy", `{"place_ids": ["cafe-onion", "seoul-forest", "ttukseom"], "transport_mode": "walking", "strategy": "annealing"}`, http.StatusBadRequest},
		{"zero weights", `{"place_ids": ["cafe-onion", "seoul-forest", "ttukseom"], "transport_mode": "walking", "weights": {}}`, http.StatusBadRequest},
		{"unknown place", `{"place_ids": ["cafe-onion", "seoul-forest", "nowhere"], "transport_mode": "walking"}`, http.StatusNotFound},
	}

	h := newTestRouter()
	for _, tc := range cases {
		rec := do(t, h, http.MethodPost, "/v1/courses/optimize", tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d (%s)", tc.name, rec.Code, tc.want, rec.Body.String())
		}
		var res map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res["error"] == nil {
			t.Fatalf("%s: body = %s, want error object", tc.name, rec.Body.String())
		}
	}
}

func TestOptimizeCourseValidationDetails(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodPost, "/v1/courses/optimize", `{"place_ids": ["a", "b"], "transport_mode": "walking"}`)
	if !strings.Contains(rec.Body.String(), "place_ids must be at least 3") {
		t.Fatalf("body = %s, want min message", rec.Body.String())
	}
}

func TestOptimizeCourseServiceFailures(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("matrix: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}
	body := `{"place_ids": ["a", "b", "c"], "transport_mode": "walking"}`
	for _, tc := range cases {
		h := NewRouter(Deps{Places: &stubPlaces{}, Optimizer: stubOptimizer{err: tc.err}})
		rec := do(t, h, http.MethodPost, "/v1/courses/optimize", body)
		if rec.Code != tc.want {
			t.Fatalf("err %v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
		if strings.Contains(rec.Body.String(), "boom") {
			t.Fatalf("internal error leaked: %s", rec.Body.String())
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/v1/courses/optimize", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter()
	_ = do(t, h, http.MethodGet, "/health", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "course_http_requests_total") {
		t.Fatalf("metrics output lacks course_http_requests_total")
	}
}
