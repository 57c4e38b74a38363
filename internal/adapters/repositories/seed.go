package repositories

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/logging"
	"course-route-service/internal/ports"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// PlaceSeed is one entry of the seed file. Lat and Lng may be omitted when
// Address is set and a geocoder is available.
type PlaceSeed struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Address     string   `json:"address,omitempty"`
	Category    string   `json:"category"`
	StayMinutes int      `json:"stay_minutes"`
}

// LoadSeeds reads and validates a seed file.
func LoadSeeds(jsonPath string) ([]PlaceSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed places: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	for i := range data {
		item := &data[i]
		item.ID = strings.TrimSpace(item.ID)
		item.Name = strings.TrimSpace(item.Name)
		item.Address = strings.Join(strings.Fields(item.Address), " ")

		if item.ID == "" {
			return nil, fmt.Errorf("seed places: item at index %d: id cannot be empty", i+1)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("seed places: duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}

		if item.Name == "" {
			return nil, fmt.Errorf("seed places: place %q: name cannot be empty", item.ID)
		}
		if item.StayMinutes < 0 {
			return nil, fmt.Errorf("seed places: place %q: negative stay_minutes", item.ID)
		}
		if (item.Lat == nil || item.Lng == nil) && item.Address == "" {
			return nil, fmt.Errorf("seed places: place %q: needs lat/lng or an address", item.ID)
		}
		if item.Lat != nil && item.Lng != nil {
			if err := (domain.Coordinates{Lat: *item.Lat, Lon: *item.Lng}).Validate(); err != nil {
				return nil, fmt.Errorf("seed places: place %q: %w", item.ID, err)
			}
		}
	}

	return data, nil
}

// SeedFromJSON upserts places from a seed file. Entries without coordinates
// are resolved through geocoder; when geocoder is nil they are skipped.
func SeedFromJSON(ctx context.Context, db *sql.DB, d Dialect, jsonPath string, geocoder ports.Geocoder) error {
	seeds, err := LoadSeeds(jsonPath)
	if err != nil {
		return err
	}

	places := make([]domain.Place, 0, len(seeds))
	addresses := make([]string, 0, len(seeds))
	for _, s := range seeds {
		p := domain.Place{
			ID:          s.ID,
			Name:        s.Name,
			Category:    domain.ParseCategory(s.Category),
			StayMinutes: s.StayMinutes,
		}

		if s.Lat != nil && s.Lng != nil {
			p.Lat, p.Lng = *s.Lat, *s.Lng
		} else {
			if geocoder == nil {
				logging.Ctx(ctx).Warn().Str("id", s.ID).Msg("skipping seed place without coordinates: no geocoder configured")
				continue
			}
			c, err := geocoder.Geocode(ctx, s.Address)
			if err != nil {
				return fmt.Errorf("seed places: geocode place %q: %w", s.ID, err)
			}
			p.Lat, p.Lng = c.Lat, c.Lon
			logging.Ctx(ctx).Debug().Str("id", s.ID).Str("address", s.Address).Msg("seed place geocoded")
		}

		places = append(places, p)
		addresses = append(addresses, s.Address)
	}

	if err := upsertPlaces(ctx, db, d, places, addresses); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Int("places", len(places)).Str("path", jsonPath).Msg("places seeded")
	return nil
}

func upsertPlaces(ctx context.Context, db *sql.DB, d Dialect, places []domain.Place, addresses []string) error {
	query := `
	INSERT OR REPLACE INTO places (
		id,
		name,
		lat,
		lng,
		category,
		stay_minutes,
		address
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	if d == DialectPostgres {
		query = `
	INSERT INTO places (id, name, lat, lng, category, stay_minutes, address)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		category = EXCLUDED.category,
		stay_minutes = EXCLUDED.stay_minutes,
		address = EXCLUDED.address;
	`
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range places {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Lat, p.Lng, string(p.Category), p.StayMinutes, addresses[i]); err != nil {
			return fmt.Errorf("seed places: insert id=%q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}
