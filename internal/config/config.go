// Package config holds runtime configuration: environment loading, defaults,
// validation, and the injectable planning constants.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/imgpress/imgpress/internal/planner"
)

// Environment selects logging output and middleware verbosity.
type Environment string

const (
	EnvDevelopment Environment = "development" // Console logging (default).
	EnvProduction  Environment = "production"  // JSON logging.
)

// Config holds all runtime settings. It is populated by [Load] and passed
// (by pointer) to packages that need it. Fields document their defaults.
type Config struct {
	Env  Environment
	Port string // Default: "8080".

	// Logging.
	LogLevel string // Default: "info".
	LogFile  string // Optional file sink in addition to stdout.

	// HTTP server timeouts.
	ReadTimeout  time.Duration // Default: 15s.
	WriteTimeout time.Duration // Default: 60s. Encodes can be slow.
	IdleTimeout  time.Duration // Default: 60s.

	// Origin fetching.
	FetchTimeout  time.Duration // Default: 20s.
	MaxInputBytes int64         // Default: 64 MiB. Larger origins are refused.

	// Compression.
	DefaultQuality       int // Default: 75. Used when the client sends no hint.
	MaxConcurrentEncodes int // Default: 4. Bounds simultaneous libvips work.
	VipsConcurrency      int // Default: 2. Threads per libvips operation.

	// Planning constants (tier tables, ceilings, fixed filter params).
	Tunables *planner.Tunables
}

// Load reads configuration from environment variables, applying defaults
// where unset. It does not read .env files itself; the caller is expected
// to run godotenv first.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                  Environment(getEnv("APP_ENV", string(EnvDevelopment))),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              os.Getenv("LOG_FILE"),
		ReadTimeout:          time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		WriteTimeout:         time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		IdleTimeout:          time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		FetchTimeout:         time.Second * time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 20)),
		MaxInputBytes:        int64(getEnvInt("MAX_INPUT_MB", 64)) << 20,
		DefaultQuality:       getEnvInt("DEFAULT_QUALITY", 75),
		MaxConcurrentEncodes: getEnvInt("MAX_CONCURRENT_ENCODES", 4),
		VipsConcurrency:      getEnvInt("VIPS_CONCURRENCY", 2),
		Tunables:             planner.DefaultTunables(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
		// valid
	default:
		return errors.New("invalid APP_ENV (use 'development' or 'production')")
	}

	if c.DefaultQuality < 1 || c.DefaultQuality > 100 {
		return fmt.Errorf("DEFAULT_QUALITY %d out of range 1-100", c.DefaultQuality)
	}
	if c.MaxConcurrentEncodes < 1 {
		return errors.New("MAX_CONCURRENT_ENCODES must be at least 1")
	}
	if c.MaxInputBytes < 1 {
		return errors.New("MAX_INPUT_MB must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
