// Package config loads service configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"course-route-service/internal/validation"
	"fmt"
	"time"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Routing   RoutingConfig   `koanf:"routing"`
	Matrix    MatrixConfig    `koanf:"matrix"`
	Optimizer OptimizerConfig `koanf:"optimizer"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	// RequestTimeout bounds a single API request, matrix build included.
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"oneof=sqlite postgres"`
	Path     string `koanf:"path"`
	URL      string `koanf:"url"`
	SeedPath string `koanf:"seed_path"`
	// SeedOnStart initializes the schema and loads SeedPath when the server boots.
	SeedOnStart bool `koanf:"seed_on_start"`
}

type RoutingConfig struct {
	// Provider is "ors" for OpenRouteService or "none" for geometry only.
	Provider string        `koanf:"provider" validate:"oneof=ors none"`
	APIKey   string        `koanf:"api_key"`
	BaseURL  string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
	// RatePerSecond caps outbound calls; Burst is the token bucket size.
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gt=0"`
	Burst         int     `koanf:"burst" validate:"min=1"`
	MaxRetries    int     `koanf:"max_retries" validate:"min=0,max=10"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"min=1"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout" validate:"gt=0"`
	// GeocodeCountry restricts seed geocoding to an ISO country code.
	GeocodeCountry string `koanf:"geocode_country"`
	// LegCache persists individual legs in the database.
	LegCache bool `koanf:"leg_cache"`
}

type MatrixConfig struct {
	CacheSize     int           `koanf:"cache_size" validate:"min=1"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gt=0"`
	Concurrency   int           `koanf:"concurrency" validate:"min=1,max=64"`
	Symmetric     bool          `koanf:"symmetric"`
	CacheFallback bool          `koanf:"cache_fallback"`
	RedisAddr     string        `koanf:"redis_addr" validate:"omitempty,hostname_port"`
	RedisTTL      time.Duration `koanf:"redis_ttl" validate:"gt=0"`
}

type OptimizerConfig struct {
	DefaultStrategy string  `koanf:"default_strategy" validate:"oneof=heuristic genetic"`
	DefaultStart    string  `koanf:"default_start" validate:"len=5"`
	PreferenceScore float64 `koanf:"preference_score" validate:"gte=0,lte=100"`

	Population     int     `koanf:"population" validate:"min=2"`
	Generations    int     `koanf:"generations" validate:"min=1"`
	MutationRate   float64 `koanf:"mutation_rate" validate:"gte=0,lte=1"`
	Elites         int     `koanf:"elites" validate:"min=0"`
	TournamentSize int     `koanf:"tournament_size" validate:"min=1"`
	// Seed fixes the genetic RNG when non-zero.
	Seed uint64 `koanf:"seed"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Validate checks field rules plus cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("config: database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("config: database.url is required for postgres")
		}
	}

	if c.Routing.Provider == "ors" && c.Routing.APIKey == "" {
		return fmt.Errorf("config: routing.api_key is required when routing.provider is ors")
	}

	if c.Optimizer.Elites >= c.Optimizer.Population {
		return fmt.Errorf("config: optimizer.elites (%d) must be below optimizer.population (%d)",
			c.Optimizer.Elites, c.Optimizer.Population)
	}

	return nil
}
