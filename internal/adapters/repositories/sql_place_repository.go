package repositories

import (
	"context"
	"course-route-service/internal/domain"
	"course-route-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the PlaceRepository port.
type SQLPlaceRepository struct{ DB *sql.DB }

func NewSQLPlaceRepository(db *sql.DB) *SQLPlaceRepository {
	return &SQLPlaceRepository{DB: db}
}

func (s *SQLPlaceRepository) ListPlaces(ctx context.Context) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "places.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql place repository: DB is nil")
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

func (s *SQLPlaceRepository) ResolvePlaces(ctx context.Context, ids []string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "places.Resolve")(&err)

	if s.DB == nil {
		return nil, errors.New("sql place repository: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.Place{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT `+placeColumns+`
	FROM places
	WHERE id = ANY($1::text[]);
	`, ids)
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
