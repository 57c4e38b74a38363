package distance

import (
	"course-route-service/internal/logging"
	"course-route-service/internal/metrics"
	"course-route-service/internal/ports"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const orsBreakerName = "ors-api"

type ORSOptions struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RatePerSecond and Burst shape outbound traffic across all callers.
	RatePerSecond float64
	Burst         int
	// MaxRetries is the number of extra attempts on transient failures.
	MaxRetries     int
	InitialBackoff time.Duration
	// The breaker opens after BreakerMaxFailures consecutive failures and
	// probes again after BreakerOpenTimeout.
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	// GeocodeCountry restricts geocoding to an ISO country code when set.
	GeocodeCountry string
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

func DefaultORSOptions() ORSOptions {
	return ORSOptions{
		BaseURL:            "https://api.openrouteservice.org",
		Timeout:            15 * time.Second,
		RatePerSecond:      10,
		Burst:              4,
		MaxRetries:         3,
		InitialBackoff:     200 * time.Millisecond,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
	}
}

// ORSClient talks to OpenRouteService. It implements ports.RouteProvider
// for single legs and ports.Geocoder for seeding.
//
// It coordinates:
//   - Persistent leg and geocode caching
//   - Client-side rate limiting
//   - A circuit breaker that fails fast while the API is unhealthy
//   - Retries with exponential backoff
//
// The client is safe for concurrent use.
type ORSClient struct {
	session  *http.Client
	apiKey   string
	baseURL  string
	opts     ORSOptions
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[ports.RouteLeg]
	legs     ports.LegCache
	geocodes ports.GeocodeCache
}

// NewORSClient builds a client. legs and geocodes may be nil.
func NewORSClient(opts ORSOptions, legs ports.LegCache, geocodes ports.GeocodeCache) (*ORSClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	def := DefaultORSOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = def.RatePerSecond
	}
	if opts.Burst < 1 {
		opts.Burst = def.Burst
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = def.InitialBackoff
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = def.BreakerMaxFailures
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = def.BreakerOpenTimeout
	}

	session := opts.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: opts.Timeout}
	}

	client := &ORSClient{
		session:  session,
		apiKey:   opts.APIKey,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		legs:     legs,
		geocodes: geocodes,
	}
	client.breaker = newBreaker(opts)

	return client, nil
}

func newBreaker(opts ORSOptions) *gobreaker.CircuitBreaker[ports.RouteLeg] {
	metrics.CircuitBreakerState.WithLabelValues(orsBreakerName).Set(0)

	return gobreaker.NewCircuitBreaker[ports.RouteLeg](gobreaker.Settings{
		Name:        orsBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerMaxFailures
		},
		// Client errors say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// BreakerState reports the current breaker state.
func (o *ORSClient) BreakerState() gobreaker.State {
	return o.breaker.State()
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSClient) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
