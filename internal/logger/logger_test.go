package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInitJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: "WARN", Format: "json", Output: &buf}))

	ctx := context.Background()
	Info(ctx, "hidden")
	ErrorWithErr(ctx, "sink failed", errors.New("disk full"), "asset", "BTC")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "sink failed", rec["msg"])
	assert.Equal(t, "disk full", rec["error"])
	assert.Equal(t, "BTC", rec["asset"])
	assert.NotContains(t, rec, "trace_id")
}

func TestStartSpanWithoutTracingIsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := StartSpan(ctx, "noop")
	defer span.End()

	assert.Equal(t, ctx, got)
	assert.False(t, span.SpanContext().IsValid())
}
