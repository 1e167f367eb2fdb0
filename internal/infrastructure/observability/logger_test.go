package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	InitLogger(&buf, LogOptions{Service: "lodging-core", Env: "test", Level: level})
	return &buf
}

func TestInitLogger_Level(t *testing.T) {
	buf := captureLogs(t, "warn")
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	captureLogs(t, "chatty")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestLoggerFromContext(t *testing.T) {
	buf := captureLogs(t, "debug")

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	LoggerFromContext(WithOperation(ctx, "create_place")).Info().Msg("done")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "lodging-core", line["service"])
	assert.Equal(t, "create_place", line["op"])
	assert.Equal(t, span.SpanContext().TraceID().String(), line["trace_id"])
}

func TestLoggerFromContext_PlainContext(t *testing.T) {
	buf := captureLogs(t, "debug")
	LoggerFromContext(context.Background()).Info().Msg("plain")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "op")
	assert.NotContains(t, line, "trace_id")
}
