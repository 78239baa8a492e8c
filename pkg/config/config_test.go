package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "0.0.0.0:8080", cfg.APIAddr)
	assert.Equal(t, "https://api.stripe.com", cfg.StripeAPIBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.WebhookClockTolerance)
	assert.Equal(t, "UTC", cfg.ReferenceTimezone)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_ADDR", "127.0.0.1:9999")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")
	t.Setenv("OUTBOX_ENABLED", "false")
	t.Setenv("WEBHOOK_CLOCK_TOLERANCE", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "127.0.0.1:9999", cfg.APIAddr)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
	assert.False(t, cfg.OutboxEnabled)
	assert.Equal(t, 30*time.Second, cfg.WebhookClockTolerance)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "not-a-number")
	t.Setenv("AUTH_TOKEN_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 24*time.Hour, cfg.AuthTokenTTL)
}
