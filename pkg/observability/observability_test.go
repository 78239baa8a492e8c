package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:       LogLevelInfo,
		Format:      LogFormatJSON,
		Output:      &buf,
		ServiceName: "tarot",
	})

	logger.Info("hello", "key", "value")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"service":"tarot"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelWarn, Output: &buf})

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should be kept")
}

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter("readings_generated", 1, T("spread", "three-card"))
	m.Counter("readings_generated", 2, T("spread", "three-card"))
	m.Gauge("outbox_backlog", 7)

	assert.Equal(t, int64(3), m.CounterValue("readings_generated", T("spread", "three-card")))
	assert.Equal(t, int64(0), m.CounterValue("readings_generated", T("spread", "daily-card")))
	assert.Equal(t, 7.0, m.GaugeValue("outbox_backlog"))
}

func TestHealthRegistry(t *testing.T) {
	reg := NewHealthRegistry()
	reg.Register("database", PingCheck(func(ctx context.Context) error { return nil }))

	require.True(t, reg.Healthy(context.Background()))

	reg.Register("broker", PingCheck(func(ctx context.Context) error {
		return errors.New("connection refused")
	}))

	results := reg.Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, results["database"].Status)
	assert.Equal(t, HealthStatusUnhealthy, results["broker"].Status)
	assert.False(t, reg.Healthy(context.Background()))
}
