package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Optimizer.DefaultStart != "10:00" {
		t.Fatalf("optimizer.default_start = %q, want 10:00", cfg.Optimizer.DefaultStart)
	}
	if cfg.Matrix.CacheTTL != time.Hour {
		t.Fatalf("matrix.cache_ttl = %v, want 1h", cfg.Matrix.CacheTTL)
	}
	if !cfg.Matrix.Symmetric {
		t.Fatalf("matrix.symmetric = false, want true")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 9000\noptimizer:\n  default_strategy: genetic\n  generations: 10\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("MATRIX_CACHE_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Fatalf("server.port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Optimizer.DefaultStrategy != "genetic" {
		t.Fatalf("default_strategy = %q, want genetic", cfg.Optimizer.DefaultStrategy)
	}
	if cfg.Optimizer.Generations != 10 {
		t.Fatalf("generations = %d, want 10", cfg.Optimizer.Generations)
	}
	if cfg.Matrix.CacheTTL != 90*time.Second {
		t.Fatalf("cache_ttl = %v, want 90s", cfg.Matrix.CacheTTL)
	}
}

func TestLoadRejectsORSWithoutKey(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ROUTING_PROVIDER", "ors")
	t.Setenv("ORS_API_KEY", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("Load() error = %v, want api_key error", err)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]string{
		"SERVER_PORT":             "server.port",
		"ORS_API_KEY":             "routing.api_key",
		"OPTIMIZER_MUTATION_RATE": "optimizer.mutation_rate",
		"HOME":                    "",
		"SERVER_":                 "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Fatalf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateElites(t *testing.T) {
	cfg := defaultConfig()
	cfg.Optimizer.Elites = cfg.Optimizer.Population
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() error = nil, want elites error")
	}
}
