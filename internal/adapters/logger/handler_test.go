package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/darling/internal/adapters/logger"
)

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	log := slog.New(logger.NewPrettyHandler(buf, nil)).
		With("backend", "pacman").
		WithGroup("entry")

	log.Warn("retrying install", "package", "ripgrep", "attempt", 2)

	assert.Equal(t, "! retrying install backend=pacman entry.package=ripgrep entry.attempt=2\n", buf.String())
}

func TestPrettyHandler_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	h := logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	require.NoError(t, slog.New(h).Handler().Handle(context.Background(),
		slog.NewRecord(time.Time{}, slog.LevelError, "install failed", 0)))
	assert.Equal(t, "✗ install failed\n", buf.String())
}
