package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// HTTP API
	APIAddr string

	// Auth
	AuthSecret   string
	AuthTokenTTL time.Duration

	// Database
	DatabaseURL string
	SQLitePath  string

	// Redis (optional; daily card cache falls back to in-memory)
	RedisURL string

	// RabbitMQ (optional; outbox falls back to noop publisher)
	RabbitMQURL string

	// Outbox
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int
	OutboxEnabled      bool

	// Billing
	StripeAPIKey            string
	StripeWebhookSecret     string
	StripeAPIBaseURL        string
	WebhookClockTolerance   time.Duration
	ProcessedEventRetention time.Duration

	// Readings
	ReferenceTimezone string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if present; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIAddr: getEnv("API_ADDR", "0.0.0.0:8080"),

		AuthSecret:   getEnv("AUTH_SECRET", ""),
		AuthTokenTTL: getDurationEnv("AUTH_TOKEN_TTL", 24*time.Hour),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:   getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxEnabled:      getBoolEnv("OUTBOX_ENABLED", true),

		StripeAPIKey:            getEnv("STRIPE_API_KEY", ""),
		StripeWebhookSecret:     getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIBaseURL:        getEnv("STRIPE_API_BASE_URL", "https://api.stripe.com"),
		WebhookClockTolerance:   getDurationEnv("WEBHOOK_CLOCK_TOLERANCE", 5*time.Minute),
		ProcessedEventRetention: getDurationEnv("PROCESSED_EVENT_RETENTION", 90*24*time.Hour),

		ReferenceTimezone: getEnv("REFERENCE_TIMEZONE", "UTC"),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
