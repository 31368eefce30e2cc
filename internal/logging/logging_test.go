package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewAt(&buf, "warn")

	l.Info("dropped")
	require.Zero(t, buf.Len())

	l.Warn("kept", "k", "v")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "kept", rec["msg"])
	require.Equal(t, "v", rec["k"])
}

func TestContextCarry(t *testing.T) {
	var buf bytes.Buffer
	l := NewAt(&buf, "info")

	ctx := IntoContext(context.Background(), l)
	require.Same(t, l, FromContext(ctx))

	// No attached logger degrades to the default, never nil.
	require.NotNil(t, FromContext(context.Background()))
}
