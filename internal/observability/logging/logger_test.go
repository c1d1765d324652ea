package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"ai-pulse/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "invalid", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	var buf bytes.Buffer
	logger := New(&buf, "json")

	logger.Debug("hidden")
	logger.Info("newsletter generated", slog.Int("items", 12))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be one JSON line")
	assert.Equal(t, "newsletter generated", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(12), entry["items"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_TextOutputHonoursLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	var buf bytes.Buffer
	logger := New(&buf, "text")

	logger.Warn("filtered")
	logger.Error("kept")

	assert.NotContains(t, buf.String(), "filtered")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestNewLogger_NotNil(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.NotNil(t, NewLogger())
	assert.NotNil(t, NewTextLogger())
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := requestid.WithRequestID(context.Background(), "550e8400-e29b-41d4-a716-446655440000")

	WithRequestID(ctx, base).Info("test message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", entry["request_id"])
}

func TestWithRequestID_EmptyRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	logger := WithRequestID(context.Background(), base)
	logger.Info("test message")

	assert.Same(t, base, logger)
	assert.NotContains(t, buf.String(), "request_id")
}

func TestFromContext(t *testing.T) {
	t.Run("with logger in context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		FromContext(WithLogger(context.Background(), logger)).Info("via context")

		assert.Contains(t, buf.String(), "via context")
	})

	t.Run("without logger in context", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("with invalid value in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), loggerContextKey, "not a logger")
		assert.Equal(t, slog.Default(), FromContext(ctx))
	})
}
