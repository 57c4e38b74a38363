package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects SQL syntax for the target database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case DialectSQLite, DialectPostgres:
		return Dialect(driver), nil
	}
	return "", fmt.Errorf("unsupported database dialect %q", driver)
}

func schemaStatements(d Dialect) []string {
	floatType := "REAL"
	if d == DialectPostgres {
		floatType = "DOUBLE PRECISION"
	}

	createPlacesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS places (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat %[1]s NOT NULL,
		lng %[1]s NOT NULL,
		category TEXT NOT NULL,
		stay_minutes INTEGER NOT NULL,
		address TEXT NOT NULL DEFAULT ''
	);
	`, floatType)

	createLegCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS leg_cache (
        leg_key TEXT PRIMARY KEY,
        distance_meters %[1]s NOT NULL,
        duration_seconds %[1]s NOT NULL
    );
	`, floatType)

	createGeocodeCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon %[1]s NOT NULL,
        lat %[1]s NOT NULL
    );
	`, floatType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_places_category
    ON places(category);
	`

	return []string{
		createPlacesQuery,
		createLegCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}
}

// Initialize the database schema.
func InitSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements(d) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
