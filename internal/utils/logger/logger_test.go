package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"golang.org/x/exp/slog"
	"gradebook/internal/app/server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		expectedLevel slog.Level
	}{
		{
			name:          "local environment",
			env:           config.EnvLocal,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "dev environment",
			env:           config.EnvDev,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "prod environment",
			env:           config.EnvProd,
			expectedLevel: slog.LevelInfo,
		},
		{
			name:          "unknown environment",
			env:           "staging",
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.expectedLevel <= slog.LevelInfo, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	logger := setupPrettySlog()
	require.NotNil(t, logger)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestWithLevel(t *testing.T) {
	ctx := context.Background()

	warn := WithLevel(config.EnvProd, "warn")
	assert.False(t, warn.Enabled(ctx, slog.LevelInfo))
	assert.True(t, warn.Enabled(ctx, slog.LevelWarn))

	// invalid level falls back to the env default
	fallback := WithLevel(config.EnvProd, "loud")
	assert.True(t, fallback.Enabled(ctx, slog.LevelInfo))

	local := WithLevel(config.EnvLocal, "error")
	assert.True(t, local.Enabled(ctx, slog.LevelDebug))
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With("component", "test")

	log.Error("delivery failed", "error", errors.New("503"), "count", 3)

	out := buf.String()
	assert.Contains(t, out, "delivery failed")
	assert.Contains(t, out, `"component": "test"`)
	assert.Contains(t, out, `"error": "503"`)
	assert.Contains(t, out, `"count": 3`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Info("dropped")
}

func TestNewCLI(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	local := newCLI(config.EnvLocal, "warn", &buf)
	assert.False(t, local.Enabled(ctx, slog.LevelInfo))

	local.Warn("store is busy")
	assert.Contains(t, buf.String(), "store is busy")

	buf.Reset()
	prod := newCLI(config.EnvProd, "", &buf)
	prod.Info("cycle finished", "outcome", "delivered")
	assert.Contains(t, buf.String(), `"outcome":"delivered"`)
	assert.False(t, prod.Enabled(ctx, slog.LevelDebug))
}
