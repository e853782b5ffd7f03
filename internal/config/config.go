// Package config provides configuration management for the relay.
package config

import (
	"os"
	"strconv"
)

const (
	// DefaultPort is the default HTTP listen port.
	DefaultPort = "9094"

	// DefaultWebhookMaxPayloadSize is the default max payload size for the
	// webhook endpoint (1MB).
	DefaultWebhookMaxPayloadSize int64 = 1 << 20 // 1048576 bytes
)

// Config holds the application configuration.
type Config struct {
	// Port is the HTTP server port.
	Port string

	// GotifyURL is the downstream Gotify push endpoint. An empty value is
	// allowed at startup; dispatch then fails per alert until it is set.
	GotifyURL string

	// Environment is the deployment environment name (development
	// environments get pretty console logging).
	Environment string

	// LogLevel is the zerolog level name.
	LogLevel string

	// WebhookSecret enables HMAC verification of webhook bodies when set.
	WebhookSecret string

	// WebhookMaxPayloadSize is the maximum webhook payload size in bytes.
	WebhookMaxPayloadSize int64
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:                  getEnvOrDefault("PORT", DefaultPort),
		GotifyURL:             os.Getenv("GOTIFY_URL"),
		Environment:           getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		WebhookSecret:         os.Getenv("WEBHOOK_SECRET"),
		WebhookMaxPayloadSize: getEnvInt64OrDefault("WEBHOOK_MAX_PAYLOAD_SIZE", DefaultWebhookMaxPayloadSize),
	}
}

// IsDevelopment reports whether the relay runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64OrDefault returns the environment variable value as int64 or the default if not set or invalid.
func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
