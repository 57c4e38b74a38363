package distance

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/logging"
	"course-route-service/internal/platform/obs"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves one address through the persistent cache, falling back
// to OpenRouteService (/geocode/search).
func (o *ORSClient) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := o.normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if o.geocodes != nil {
		hits, err := o.geocodes.GetMany(ctx, []string{norm})
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("geocode cache read failed")
		} else if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	c, err := o.searchAddress(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}

	if o.geocodes != nil {
		if err := o.geocodes.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("geocode cache write failed")
		}
	}

	return c, nil
}

func (o *ORSClient) searchAddress(ctx context.Context, text string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", text)
		q.Set("size", "1")
		if o.opts.GeocodeCountry != "" {
			q.Set("boundary.country", o.opts.GeocodeCountry)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, errors.New("no geocode results")
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, errors.New("invalid coordinate format")
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
