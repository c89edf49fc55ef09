package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the process-wide logger. Init must run before anything logs.
var Logger zerolog.Logger

// Init configures the global logger. Development mode swaps the JSON stream
// for a console writer; everything else stays machine-readable for the log
// pipeline.
func Init(service string, development bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	Logger = zerolog.New(out).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("service", service).
		Logger()
	log.Logger = Logger
}

// SetLevel applies a textual level from configuration. Unknown values fall
// back to info rather than failing startup.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// WithContext returns a logger carrying the trace and span ids of the
// current span, so log lines correlate with their traces.
func WithContext(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &l
}

// Level shorthands over WithContext.

func Debug(ctx context.Context) *zerolog.Event { return WithContext(ctx).Debug() }

func Info(ctx context.Context) *zerolog.Event { return WithContext(ctx).Info() }

func Warn(ctx context.Context) *zerolog.Event { return WithContext(ctx).Warn() }

func Error(ctx context.Context) *zerolog.Event { return WithContext(ctx).Error() }
