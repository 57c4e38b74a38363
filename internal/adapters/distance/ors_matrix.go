package distance

import (
	"bytes"
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/logging"
	"course-route-service/internal/metrics"
	"course-route-service/internal/platform/obs"
	"course-route-service/internal/ports"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// ORS routing profiles per transport mode. Modes without a profile are
// never sent upstream.
var orsProfiles = map[domain.TransportMode]string{
	domain.ModeWalking: "foot-walking",
	domain.ModeDriving: "driving-car",
}

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Route returns distance and duration for one directed leg. Every failure
// wraps ports.ErrUpstreamUnavailable.
func (o *ORSClient) Route(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	mode domain.TransportMode,
) (_ ports.RouteLeg, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	profile, ok := orsProfiles[mode]
	if !ok {
		return ports.RouteLeg{}, fmt.Errorf("ors route: %w: no profile for mode %q", ports.ErrUpstreamUnavailable, mode)
	}

	key := ports.LegKey(origin, destination, mode)
	if leg, ok := o.cachedLeg(ctx, key); ok {
		return leg, nil
	}

	leg, err := o.breaker.Execute(func() (ports.RouteLeg, error) {
		return o.fetchLeg(ctx, profile, origin, destination)
	})
	if err != nil {
		result := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(orsBreakerName, result).Inc()
		return ports.RouteLeg{}, fmt.Errorf("ors route: %w: %w", ports.ErrUpstreamUnavailable, err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(orsBreakerName, "success").Inc()

	if o.legs != nil {
		if err := o.legs.Put(ctx, key, leg); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("leg cache write failed")
		}
	}

	return leg, nil
}

func (o *ORSClient) cachedLeg(ctx context.Context, key string) (ports.RouteLeg, bool) {
	if o.legs == nil {
		return ports.RouteLeg{}, false
	}
	leg, ok, err := o.legs.Get(ctx, key)
	switch {
	case err != nil:
		metrics.LegCacheRequests.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("leg cache read failed")
		return ports.RouteLeg{}, false
	case ok:
		metrics.LegCacheRequests.WithLabelValues("hit").Inc()
		return leg, true
	default:
		metrics.LegCacheRequests.WithLabelValues("miss").Inc()
		return ports.RouteLeg{}, false
	}
}

// fetchLeg asks the matrix endpoint for a single source/destination cell.
func (o *ORSClient) fetchLeg(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.RouteLeg, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, profile)

	payload, err := json.Marshal(matrixRequest{
		Locations:    [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
	})
	if err != nil {
		return ports.RouteLeg{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteLeg{}, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.RouteLeg{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != 1 || len(mr.Durations) != 1 ||
		len(mr.Distances[0]) != 1 || len(mr.Durations[0]) != 1 {
		return ports.RouteLeg{}, fmt.Errorf(
			"expected a 1x1 matrix; got distances=%d durations=%d rows",
			len(mr.Distances), len(mr.Durations),
		)
	}

	meters, seconds := mr.Distances[0][0], mr.Durations[0][0]
	if meters == nil || seconds == nil {
		return ports.RouteLeg{}, errors.New("matrix returned no route for the pair")
	}

	return ports.RouteLeg{DistanceMeters: *meters, DurationSeconds: *seconds}, nil
}
