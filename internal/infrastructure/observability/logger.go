package observability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

type requestIDKey struct{}

// InitLogger configures the global zerolog logger. Development gets a
// console writer at debug; other environments get JSON at info. A valid
// level string overrides either default.
func InitLogger(serviceName, env, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lc := zerolog.New(os.Stdout).With().Timestamp().Caller()
	defaultLevel := zerolog.InfoLevel
	if env == "development" {
		defaultLevel = zerolog.DebugLevel
		lc = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp()
	}
	log.Logger = lc.Str("service", serviceName).Str("env", env).Logger()

	zerolog.SetGlobalLevel(defaultLevel)
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			log.Warn().Str("level", level).Msg("Unknown LOG_LEVEL, keeping default")
			return
		}
		zerolog.SetGlobalLevel(parsed)
	}
}

// ContextWithRequestID stores the request ID that LoggerFromContext attaches
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID, or "" outside a request
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggerFromContext returns the global logger enriched with the span's
// trace and span IDs and the request ID, when present.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	lc := log.With()
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		lc = lc.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	logger := lc.Logger()
	return &logger
}
