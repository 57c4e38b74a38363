package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			Path:        "data/app.db",
			SeedPath:    "data/seeds/places.json",
			SeedOnStart: true,
		},
		Routing: RoutingConfig{
			Provider:           "none",
			BaseURL:            "https://api.openrouteservice.org",
			Timeout:            15 * time.Second,
			RatePerSecond:      10,
			Burst:              4,
			MaxRetries:         3,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 30 * time.Second,
			GeocodeCountry:     "KR",
			LegCache:           true,
		},
		Matrix: MatrixConfig{
			CacheSize:     512,
			CacheTTL:      time.Hour,
			Concurrency:   4,
			Symmetric:     true,
			CacheFallback: true,
			RedisTTL:      6 * time.Hour,
		},
		Optimizer: OptimizerConfig{
			DefaultStrategy: "heuristic",
			DefaultStart:    "10:00",
			PreferenceScore: 70,
			Population:      50,
			Generations:     100,
			MutationRate:    0.2,
			Elites:          5,
			TournamentSize:  3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration: struct defaults, then the YAML file, then env.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envAliases keeps the short variable names used by earlier deployments.
var envAliases = map[string]string{
	"port":         "server.port",
	"db_path":      "database.path",
	"database_url": "database.url",
	"seed_path":    "database.seed_path",
	"ors_api_key":  "routing.api_key",
	"redis_addr":   "matrix.redis_addr",
	"log_level":    "logging.level",
	"log_format":   "logging.format",
}

var sections = []string{"server", "database", "routing", "matrix", "optimizer", "logging"}

// envTransformFunc maps SERVER_PORT to server.port and drops unrelated vars.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if alias, ok := envAliases[key]; ok {
		return alias
	}

	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok && rest != "" {
			return s + "." + rest
		}
	}
	return ""
}
