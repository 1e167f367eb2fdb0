package observability

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// LogOptions selects the global logger's format and threshold
type LogOptions struct {
	Service string
	Env     string
	// Level is a zerolog level name; empty or unknown means info.
	Level string
}

// InitLogger points the global zerolog logger at w. Development gets the
// console writer, everything else JSON lines with caller info.
func InitLogger(w io.Writer, opts LogOptions) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var base zerolog.Logger
	if opts.Env == "development" {
		base = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		base = zerolog.New(w).With().Timestamp().Caller().Logger()
	}
	log.Logger = base.With().Str("service", opts.Service).Logger()
}

type operationKey struct{}

// WithOperation tags ctx so every line logged through LoggerFromContext
// carries the facade operation that produced it.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// LoggerFromContext returns the global logger enriched with the operation
// name and trace ids found in ctx.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	lc := log.With()
	if op, ok := ctx.Value(operationKey{}).(string); ok {
		lc = lc.Str("op", op)
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	logger := lc.Logger()
	return &logger
}
