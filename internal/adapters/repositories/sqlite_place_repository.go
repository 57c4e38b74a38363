package repositories

import (
	"context"
	"course-route-service/internal/domain"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLite-backed implementation of the PlaceRepository port.
type SqlitePlaceRepository struct{ DB *sql.DB }

func NewSqlitePlaceRepository(db *sql.DB) *SqlitePlaceRepository {
	return &SqlitePlaceRepository{DB: db}
}

// Return all places stored in the database.
func (s *SqlitePlaceRepository) ListPlaces(ctx context.Context) ([]domain.Place, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite place repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT `+placeColumns+`
	FROM places
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list places: query places table: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows, "list places")
}

func (s *SqlitePlaceRepository) ResolvePlaces(ctx context.Context, ids []string) ([]domain.Place, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite place repository: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.Place{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	ph := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	// Only the placeholder list is interpolated.
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
	SELECT `+placeColumns+`
	FROM places
	WHERE id IN (%s);
	`, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("resolve places: query places table: %w", err)
	}
	defer rows.Close()

	found, err := scanPlaces(rows, "resolve places")
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, found)
}
