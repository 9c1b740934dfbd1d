// ABOUTME: Configuration loader for the Stockpilot client SDK and CLI
// ABOUTME: Loads settings from environment variables (and .env) with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// API
	APIBaseURL string // base URL of the Stockpilot backend (required)

	// Timeouts (seconds)
	HTTPTimeout    int // general request timeout (default 30)
	RefreshTimeout int // bound on the silent-refresh call so a wedged
	// refresh cannot hold the single-flight lock forever (default 10)

	// Cache
	CacheTTL int // seconds, TTL for the shared data cache (default 300)

	// Credentials (optional, CLI convenience only; the SDK itself takes
	// credentials as arguments and never reads them from the environment)
	Email    string
	Password string
}

func Load() (*Config, error) {
	// Best-effort .env support for local development; a missing file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:     ensureScheme(os.Getenv("STOCKPILOT_API_URL")),
		HTTPTimeout:    getEnvInt("STOCKPILOT_HTTP_TIMEOUT", 30),
		RefreshTimeout: getEnvInt("STOCKPILOT_REFRESH_TIMEOUT", 10),
		CacheTTL:       getEnvInt("STOCKPILOT_CACHE_TTL", 300),
		Email:          os.Getenv("STOCKPILOT_EMAIL"),
		Password:       os.Getenv("STOCKPILOT_PASSWORD"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("STOCKPILOT_API_URL is required")
	}

	for _, t := range []struct {
		name  string
		value int
	}{
		{"STOCKPILOT_HTTP_TIMEOUT", cfg.HTTPTimeout},
		{"STOCKPILOT_REFRESH_TIMEOUT", cfg.RefreshTimeout},
		{"STOCKPILOT_CACHE_TTL", cfg.CacheTTL},
	} {
		if t.value < 1 || t.value > 3600 {
			return nil, fmt.Errorf("%s must be between 1 and 3600 seconds, got %d", t.name, t.value)
		}
	}

	return cfg, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
