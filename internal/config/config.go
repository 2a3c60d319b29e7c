package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultA4Hz              = 440.0
	defaultStateTag          = "rng-store-v3"
	defaultPreviewSampleRate = 48000
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence (optional). Without a database the RNG state lives in memory only
	DatabaseURL string
	StateTag    string // row tag of the persisted RNG snapshot

	// Tuning and rendering
	A4Hz              float64 // reference pitch for 12-TET resolution
	PreviewSampleRate int     // sample rate of rendered WAV previews

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from the upstream gateway
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		StateTag:          getEnv("STATE_TAG", defaultStateTag),
		A4Hz:              getEnvFloat("A4_HZ", defaultA4Hz),
		PreviewSampleRate: getEnvInt("PREVIEW_SAMPLE_RATE", defaultPreviewSampleRate),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		AuthMode:          getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat returns defaultValue for unset, malformed or non-positive values
func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// IsGatewayMode returns true if running behind the auth gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// HasDatabase reports whether persistence and the sound bank are enabled
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
