// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultMaxBodyBytes int64 = 1 << 20

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MetricsAddr is the listen address for the Prometheus endpoint.
	// Defaults to ":9090". Set METRICS_ADDR=off to disable it.
	MetricsAddr string

	// NATSURL enables journey events when set.
	NATSURL string

	// NATSSubjectPrefix is the first subject token for events. Defaults to "clamcard".
	NATSSubjectPrefix string

	// GTFSPath is a local file or http(s) URL of a GTFS zip whose stops are
	// imported as stations at startup. Optional.
	GTFSPath string

	// Location defines calendar days and weeks for fare caps. Defaults to UTC.
	Location *time.Location

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// TapRatePerSecond and TapBurst limit taps per card. A rate of 0
	// disables the limiter. Defaults to 2 per second with a burst of 5.
	TapRatePerSecond float64
	TapBurst         int
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "clamcard"),
		GTFSPath:          os.Getenv("GTFS_PATH"),
	}
	if cfg.MetricsAddr == "off" {
		cfg.MetricsAddr = ""
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.MaxBodyBytes = defaultMaxBodyBytes
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_BODY_BYTES: %q", v)
		}
		cfg.MaxBodyBytes = n
	}

	cfg.TapRatePerSecond = 2
	if v := os.Getenv("TAP_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Config{}, fmt.Errorf("invalid TAP_RATE_PER_SECOND: %q", v)
		}
		cfg.TapRatePerSecond = f
	}

	cfg.TapBurst = 5
	if v := os.Getenv("TAP_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid TAP_BURST: %q", v)
		}
		cfg.TapBurst = n
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
