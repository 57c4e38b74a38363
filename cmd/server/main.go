package main

import (
	"context"
	"course-route-service/internal/adapters/cache"
	"course-route-service/internal/adapters/distance"
	"course-route-service/internal/adapters/repositories"
	"course-route-service/internal/api"
	"course-route-service/internal/config"
	"course-route-service/internal/domain"
	"course-route-service/internal/logging"
	"course-route-service/internal/platform/db"
	"course-route-service/internal/ports"
	"course-route-service/internal/services"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL, ORS, caches) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	dialect, err := repositories.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}

	conn, err := db.Open(cfg.Database.Driver, dsn(cfg.Database))
	if err != nil {
		return err
	}
	defer conn.Close()

	// Schema must exist before the SQL caches are used.
	if cfg.Database.SeedOnStart {
		if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
			return err
		}
	}

	legs, geocodes := sqlCaches(conn, dialect)

	var routes ports.RouteProvider
	var geocoder ports.Geocoder
	if cfg.Routing.Provider == "ors" {
		if !cfg.Routing.LegCache {
			legs = nil
		}
		client, err := distance.NewORSClient(orsOptions(cfg.Routing), legs, geocodes)
		if err != nil {
			return err
		}
		routes, geocoder = client, client
	} else {
		logging.Warn().Msg("no routing provider configured; every matrix uses geometric estimates")
	}

	if cfg.Database.SeedOnStart && cfg.Database.SeedPath != "" {
		if err := repositories.SeedFromJSON(ctx, conn, dialect, cfg.Database.SeedPath, geocoder); err != nil {
			return err
		}
	}

	matrices, closeCache := matrixCache(ctx, cfg.Matrix)
	defer closeCache()

	provider := services.NewMatrixProvider(routes, matrices, services.MatrixProviderOptions{
		Concurrency:   cfg.Matrix.Concurrency,
		Symmetric:     cfg.Matrix.Symmetric,
		CacheFallback: cfg.Matrix.CacheFallback,
	})

	places := placeRepository(conn, dialect)
	optimizer, err := newOptimizer(cfg.Optimizer, places, provider)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Places:         places,
		Optimizer:      optimizer,
		DB:             conn,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	// Timeouts are tuned for cold-cache matrix builds (external API latency).
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func dsn(c config.DatabaseConfig) string {
	if c.Driver == db.DriverPostgres {
		return c.URL
	}
	return c.Path
}

func sqlCaches(conn *sql.DB, d repositories.Dialect) (ports.LegCache, ports.GeocodeCache) {
	if d == repositories.DialectPostgres {
		return cache.NewSQLLegCache(conn), cache.NewSQLGeocodeCache(conn)
	}
	return cache.NewSqliteLegCache(conn), cache.NewSqliteGeocodeCache(conn)
}

func placeRepository(conn *sql.DB, d repositories.Dialect) ports.PlaceRepository {
	if d == repositories.DialectPostgres {
		return repositories.NewSQLPlaceRepository(conn)
	}
	return repositories.NewSqlitePlaceRepository(conn)
}

func orsOptions(c config.RoutingConfig) distance.ORSOptions {
	opts := distance.DefaultORSOptions()
	opts.APIKey = c.APIKey
	opts.BaseURL = c.BaseURL
	opts.Timeout = c.Timeout
	opts.RatePerSecond = c.RatePerSecond
	opts.Burst = c.Burst
	opts.MaxRetries = c.MaxRetries
	opts.BreakerMaxFailures = c.BreakerMaxFailures
	opts.BreakerOpenTimeout = c.BreakerOpenTimeout
	opts.GeocodeCountry = c.GeocodeCountry
	return opts
}

// matrixCache returns the in-process cache, tiered in front of Redis when
// an address is configured and reachable.
func matrixCache(ctx context.Context, c config.MatrixConfig) (ports.MatrixCache, func()) {
	mem := cache.NewMemoryMatrixCache(c.CacheSize, c.CacheTTL)
	if c.RedisAddr == "" {
		return mem, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", c.RedisAddr).Msg("redis unavailable; using in-process matrix cache only")
		_ = client.Close()
		return mem, func() {}
	}

	logging.Info().Str("addr", c.RedisAddr).Msg("redis matrix cache enabled")
	tiered := cache.NewTieredMatrixCache(mem, cache.NewRedisMatrixCache(client, c.RedisTTL))
	return tiered, func() { _ = client.Close() }
}

func newOptimizer(c config.OptimizerConfig, repo ports.PlaceRepository, matrices services.MatrixSource) (*services.CourseOptimizer, error) {
	start, err := domain.ParseClock(c.DefaultStart)
	if err != nil {
		return nil, fmt.Errorf("optimizer.default_start: %w", err)
	}

	newRand := services.TimeSeededRand()
	if c.Seed != 0 {
		newRand = services.SeededRand(c.Seed)
	}

	registry := services.NewStrategyRegistry(
		services.NewHeuristicStrategy(),
		services.NewGeneticStrategy(services.GeneticParams{
			PopulationSize: c.Population,
			Generations:    c.Generations,
			MutationRate:   c.MutationRate,
			Elites:         c.Elites,
			TournamentSize: c.TournamentSize,
		}, newRand),
	)

	return services.NewCourseOptimizer(repo, matrices, registry, services.CourseDefaults{
		Strategy:        c.DefaultStrategy,
		StartTime:       start,
		PreferenceScore: c.PreferenceScore,
	}), nil
}
