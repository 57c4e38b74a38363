package main

import (
	"context"
	"course-route-service/internal/adapters/cache"
	"course-route-service/internal/adapters/distance"
	"course-route-service/internal/adapters/repositories"
	"course-route-service/internal/config"
	"course-route-service/internal/logging"
	"course-route-service/internal/platform/db"
	"course-route-service/internal/ports"
	"database/sql"
	"flag"
	"fmt"

	"github.com/joho/godotenv"
)

func main() {
	seedPath := flag.String("seed", "", "seed file (defaults to database.seed_path)")
	schemaOnly := flag.Bool("schema-only", false, "create the schema without seeding")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	dialect, err := repositories.ParseDialect(cfg.Database.Driver)
	if err != nil {
		logging.Fatal().Err(err).Msg("database driver")
	}

	dsn := cfg.Database.Path
	if dialect == repositories.DialectPostgres {
		dsn = cfg.Database.URL
	}
	conn, err := db.Open(cfg.Database.Driver, dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	path := *seedPath
	if path == "" {
		path = cfg.Database.SeedPath
	}

	if err := initAndSeed(context.Background(), conn, dialect, cfg.Routing, path, *schemaOnly); err != nil {
		logging.Fatal().Err(err).Msg("dbtool failed")
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, d repositories.Dialect, routing config.RoutingConfig, seedPath string, schemaOnly bool) error {
	logging.Info().Str("dialect", string(d)).Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn, d); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	logging.Info().Msg("schema ready")

	if schemaOnly {
		return nil
	}

	geocoder, err := seedGeocoder(conn, d, routing)
	if err != nil {
		return err
	}

	logging.Info().Str("path", seedPath).Msg("seeding database")
	if err := repositories.SeedFromJSON(ctx, conn, d, seedPath, geocoder); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logging.Info().Msg("seeding complete")

	return nil
}

// seedGeocoder returns an ORS geocoder backed by the persistent geocode
// cache, or nil when no routing provider is configured.
func seedGeocoder(conn *sql.DB, d repositories.Dialect, routing config.RoutingConfig) (ports.Geocoder, error) {
	if routing.Provider != "ors" {
		return nil, nil
	}

	var geocodes ports.GeocodeCache = cache.NewSqliteGeocodeCache(conn)
	if d == repositories.DialectPostgres {
		geocodes = cache.NewSQLGeocodeCache(conn)
	}

	opts := distance.DefaultORSOptions()
	opts.APIKey = routing.APIKey
	opts.BaseURL = routing.BaseURL
	opts.Timeout = routing.Timeout
	opts.GeocodeCountry = routing.GeocodeCountry

	client, err := distance.NewORSClient(opts, nil, geocodes)
	if err != nil {
		return nil, fmt.Errorf("ors geocoder: %w", err)
	}
	return client, nil
}
