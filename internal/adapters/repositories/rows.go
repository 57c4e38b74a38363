package repositories

import (
	"course-route-service/internal/domain"
	"course-route-service/internal/ports"
	"database/sql"
	"fmt"
)

const placeColumns = `id, name, lat, lng, category, stay_minutes`

func scanPlaces(rows *sql.Rows, op string) ([]domain.Place, error) {
	places := make([]domain.Place, 0, 16)
	for rows.Next() {
		var p domain.Place
		var category string
		if err := rows.Scan(&p.ID, &p.Name, &p.Lat, &p.Lng, &category, &p.StayMinutes); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		p.Category = domain.ParseCategory(category)
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}
	return places, nil
}

// orderByIDs returns found places in the order of ids, failing on the first
// id that was not found.
func orderByIDs(ids []string, found []domain.Place) ([]domain.Place, error) {
	byID := make(map[string]domain.Place, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	out := make([]domain.Place, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("resolve places: %w: %q", ports.ErrPlaceNotFound, id)
		}
		out = append(out, p)
	}
	return out, nil
}
