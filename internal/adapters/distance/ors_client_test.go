package distance

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/ports"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

var (
	cityHall = domain.Coordinates{Lat: 37.5663, Lon: 126.9779}
	palace   = domain.Coordinates{Lat: 37.5796, Lon: 126.9770}
)

type memLegCache struct {
	mu   sync.Mutex
	legs map[string]ports.RouteLeg
}

func (c *memLegCache) Get(_ context.Context, key string) (ports.RouteLeg, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	leg, ok := c.legs[key]
	return leg, ok, nil
}

func (c *memLegCache) Put(_ context.Context, key string, leg ports.RouteLeg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.legs == nil {
		c.legs = make(map[string]ports.RouteLeg)
	}
	c.legs[key] = leg
	return nil
}

type memGeocodeCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func (c *memGeocodeCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memGeocodeCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]domain.Coordinates)
	}
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

func testOptions(baseURL string) ORSOptions {
	opts := DefaultORSOptions()
	opts.APIKey = "test-key"
	opts.BaseURL = baseURL
	opts.Timeout = 2 * time.Second
	opts.RatePerSecond = 1000
	opts.Burst = 100
	opts.InitialBackoff = time.Millisecond
	return opts
}

func matrixHandler(hits *atomic.Int32, statuses ...int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1))
		if n <= len(statuses) && statuses[n-1] != http.StatusOK {
			http.Error(w, "upstream says no", statuses[n-1])
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"distances":[[1530.2]],"durations":[[1101.5]]}`)
	}
}

func TestORSRouteSuccess(t *testing.T) {
	var hits atomic.Int32
	var gotPath, gotAuth string
	var gotBody matrixRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth = r.URL.Path, r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		matrixHandler(&hits)(w, r)
	}))
	defer srv.Close()

	client, err := NewORSClient(testOptions(srv.URL), nil, nil)
	if err != nil {
		t.Fatalf("NewORSClient() error = %v", err)
	}

	leg, err := client.Route(context.Background(), cityHall, palace, domain.ModeWalking)
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if leg.DistanceMeters != 1530.2 || leg.DurationSeconds != 1101.5 {
		t.Fatalf("Route() = %+v", leg)
	}
	if gotPath != "/v2/matrix/foot-walking" {
		t.Fatalf("path = %q, want /v2/matrix/foot-walking", gotPath)
	}
	if gotAuth != "test-key" {
		t.Fatalf("Authorization = %q, want test-key", gotAuth)
	}
	if len(gotBody.Locations) != 2 || gotBody.Locations[0][0] != cityHall.Lon || gotBody.Locations[0][1] != cityHall.Lat {
		t.Fatalf("locations = %v, want [lon lat] pairs", gotBody.Locations)
	}
}

func TestORSRouteRetriesTransientFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(matrixHandler(&hits, http.StatusServiceUnavailable, http.StatusOK))
	defer srv.Close()

	client, _ := NewORSClient(testOptions(srv.URL), nil, nil)
	if _, err := client.Route(context.Background(), cityHall, palace, domain.ModeDriving); err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("hits = %d, want 2", got)
	}
}

func TestORSRouteBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	opts := testOptions(srv.URL)
	opts.MaxRetries = 0
	opts.BreakerMaxFailures = 2
	opts.BreakerOpenTimeout = time.Minute
	client, _ := NewORSClient(opts, nil, nil)

	for i := 0; i < 2; i++ {
		_, err := client.Route(context.Background(), cityHall, palace, domain.ModeWalking)
		if !errors.Is(err, ports.ErrUpstreamUnavailable) {
			t.Fatalf("call %d: error = %v, want ErrUpstreamUnavailable", i, err)
		}
	}
	if client.BreakerState() != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", client.BreakerState())
	}

	_, err := client.Route(context.Background(), cityHall, palace, domain.ModeWalking)
	if !errors.Is(err, gobreaker.ErrOpenState) || !errors.Is(err, ports.ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want open state and ErrUpstreamUnavailable", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("hits = %d, want 2", got)
	}
}

func TestORSRouteClientErrorsKeepBreakerClosed(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad coordinates", http.StatusBadRequest)
	}))
	defer srv.Close()

	opts := testOptions(srv.URL)
	opts.BreakerMaxFailures = 2
	client, _ := NewORSClient(opts, nil, nil)

	for i := 0; i < 5; i++ {
		if _, err := client.Route(context.Background(), cityHall, palace, domain.ModeWalking); err == nil {
			t.Fatalf("call %d succeeded", i)
		}
	}
	if client.BreakerState() != gobreaker.StateClosed {
		t.Fatalf("breaker state = %v, want closed", client.BreakerState())
	}
	if got := hits.Load(); got != 5 {
		t.Fatalf("hits = %d, want 5 without retries", got)
	}
}

func TestORSRouteModesWithoutProfile(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(matrixHandler(&hits))
	defer srv.Close()

	client, _ := NewORSClient(testOptions(srv.URL), nil, nil)
	for _, mode := range []domain.TransportMode{domain.ModeTransit, domain.ModeMixed} {
		_, err := client.Route(context.Background(), cityHall, palace, mode)
		if !errors.Is(err, ports.ErrUpstreamUnavailable) {
			t.Fatalf("%s: error = %v, want ErrUpstreamUnavailable", mode, err)
		}
	}
	if hits.Load() != 0 {
		t.Fatalf("hits = %d, want 0", hits.Load())
	}
}

func TestORSRouteUsesLegCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(matrixHandler(&hits))
	defer srv.Close()

	legs := &memLegCache{}
	client, _ := NewORSClient(testOptions(srv.URL), legs, nil)

	for i := 0; i < 3; i++ {
		if _, err := client.Route(context.Background(), cityHall, palace, domain.ModeWalking); err != nil {
			t.Fatalf("Route() error = %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("hits = %d, want 1", got)
	}
	if _, ok, _ := legs.Get(context.Background(), ports.LegKey(cityHall, palace, domain.ModeWalking)); !ok {
		t.Fatalf("leg not cached")
	}
}

func TestORSRouteNoRouteForPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"distances":[[null]],"durations":[[null]]}`)
	}))
	defer srv.Close()

	client, _ := NewORSClient(testOptions(srv.URL), nil, nil)
	if _, err := client.Route(context.Background(), cityHall, palace, domain.ModeWalking); !errors.Is(err, ports.ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestORSGeocodeUsesCache(t *testing.T) {
	var hits atomic.Int32
	var gotText, gotCountry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotText = r.URL.Query().Get("text")
		gotCountry = r.URL.Query().Get("boundary.country")
		_, _ = io.WriteString(w, `{"features":[{"geometry":{"coordinates":[126.9882,37.5512]}}]}`)
	}))
	defer srv.Close()

	opts := testOptions(srv.URL)
	opts.GeocodeCountry = "KR"
	client, _ := NewORSClient(opts, nil, &memGeocodeCache{})

	for i := 0; i < 2; i++ {
		c, err := client.Geocode(context.Background(), "  105 Namsangongwon-gil,   Seoul ")
		if err != nil {
			t.Fatalf("Geocode() error = %v", err)
		}
		if c.Lat != 37.5512 || c.Lon != 126.9882 {
			t.Fatalf("Geocode() = %+v", c)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want 1", hits.Load())
	}
	if gotText != "105 Namsangongwon-gil, Seoul" || gotCountry != "KR" {
		t.Fatalf("query text=%q country=%q", gotText, gotCountry)
	}
}

func TestORSGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"features":[]}`)
	}))
	defer srv.Close()

	client, _ := NewORSClient(testOptions(srv.URL), nil, nil)
	_, err := client.Geocode(context.Background(), "nowhere")
	if err == nil || !strings.Contains(err.Error(), "no geocode results") {
		t.Fatalf("Geocode() error = %v", err)
	}
	if _, err := client.Geocode(context.Background(), "   "); err == nil {
		t.Fatalf("Geocode(blank) succeeded")
	}
}

func TestNewORSClientRequiresKey(t *testing.T) {
	if _, err := NewORSClient(ORSOptions{}, nil, nil); err == nil {
		t.Fatalf("NewORSClient() without key succeeded")
	}
}
