// Package config centralizes environment configuration. A .env file in the
// working directory is honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs at startup.
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string

	TeamCSVPath string
	OddsAPIKey  string
	RedisURL    string

	// SportPath selects the ESPN scoreboard (sport/league path segment).
	SportPath string
	// FallbackQuery is the Google search used by the scrape fallback; empty
	// disables the fallback entirely.
	FallbackQuery string

	PollInterval time.Duration

	HTTPPort    string
	WSPort      string
	MetricsPort string
}

// Load reads the environment (after merging .env, if any) and applies
// defaults. ODDS_API_KEY and TEAM_CSV_PATH have no sane defaults and are
// validated by the caller.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:         getEnv("ENV", "local"),
		ServiceName: getEnv("SERVICE_NAME", "madness"),

		TeamCSVPath: getEnv("TEAM_CSV_PATH", ""),
		OddsAPIKey:  getEnv("ODDS_API_KEY", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		SportPath:     getEnv("SPORT_PATH", "basketball/mens-college-basketball"),
		FallbackQuery: getEnv("FALLBACK_QUERY", "ncaa mens basketball games today"),

		PollInterval: getDuration("POLL_INTERVAL", 60*time.Second),

		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		WSPort:      getEnv("WS_PORT", "8090"),
		MetricsPort: getEnv("METRICS_PORT", "9095"),
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
