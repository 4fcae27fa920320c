package config

import (
	"os"
	"strconv"

	"bioeq/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Output     OutputConfig
	Simulation SimulationConfig
}

// DatabaseConfig holds the optional run-archive connection settings.
// An empty URL disables archiving.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// OutputConfig holds file system paths for artifacts
type OutputConfig struct {
	Dir string
}

// SimulationConfig holds Monte-Carlo defaults for the pipeline run
type SimulationConfig struct {
	Seed    int64
	NSim    int
	Workers int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Output: OutputConfig{
			Dir: getEnvOrDefault("OUTPUT_DIR", "output"),
		},
	}

	seed, err := getEnvInt64("SEED", 42)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load simulation configuration")
	}
	nsim, err := getEnvInt("NSIM", 10000)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load simulation configuration")
	}
	workers, err := getEnvInt("SIM_WORKERS", 1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load simulation configuration")
	}
	if nsim < 1 {
		return nil, errors.ConfigInvalid("NSIM must be >= 1")
	}
	if workers < 1 {
		return nil, errors.ConfigInvalid("SIM_WORKERS must be >= 1")
	}
	cfg.Simulation = SimulationConfig{Seed: seed, NSim: nsim, Workers: workers}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + v)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer, got " + v)
	}
	return n, nil
}
