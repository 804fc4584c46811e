package observability

import (
	"log/slog"
	"testing"

	"github.com/couchcryptid/wildlife-park-etl/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})

	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
	_, isText := logger.Handler().(*slog.TextHandler)
	assert.True(t, isText)

	_, isJSON := NewLogger(&config.Config{LogFormat: "json"}).Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)
}

func TestMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RowsLoaded.Add(3)
	a.ChartCache.WithLabelValues("hit").Inc()

	assert.InDelta(t, 3.0, testutil.ToFloat64(a.RowsLoaded), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.RowsLoaded), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(a.ChartCache.WithLabelValues("hit")), 0)
}
