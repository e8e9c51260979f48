// Package logger is the process-wide structured logger. Records carry the
// OpenTelemetry trace and span IDs of the context they are logged with, so a
// vigil cycle can be followed across the engine, the price source and the
// journal.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "papertrader"

var (
	mu             sync.RWMutex
	global         = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	tracingEnabled bool
)

// Config holds logging configuration.
type Config struct {
	Level   string    // DEBUG, INFO, WARN, ERROR
	Format  string    // json or text
	Tracing bool      // export OpenTelemetry spans to stdout
	Output  io.Writer // defaults to os.Stdout
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_TRACING_ENABLED.
func ConfigFromEnv() Config {
	return Config{
		Level:   envOr("LOG_LEVEL", "INFO"),
		Format:  envOr("LOG_FORMAT", "text"),
		Tracing: envOr("LOG_TRACING_ENABLED", "false") == "true",
	}
}

// Init installs the global logger and, when requested, the tracer provider.
func Init(cfg Config) error {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	l := slog.New(h)

	mu.Lock()
	global = l
	mu.Unlock()
	slog.SetDefault(l)

	if cfg.Tracing {
		if err := initTracer(); err != nil {
			l.Warn("tracing disabled", "error", err)
		}
	}
	return nil
}

func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mu.Lock()
	tracerProvider = tp
	tracer = tp.Tracer(serviceName)
	tracingEnabled = true
	mu.Unlock()
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	tp := tracerProvider
	tracerProvider = nil
	tracer = nil
	tracingEnabled = false
	mu.Unlock()

	if tp != nil {
		return tp.Shutdown(ctx)
	}
	return nil
}

// ParseLevel maps a level name to slog.Level, defaulting to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StartSpan starts a span when tracing is enabled and otherwise returns the
// span already carried by ctx (possibly a no-op span).
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	mu.RLock()
	t, on := tracer, tracingEnabled
	mu.RUnlock()

	if !on || t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.Start(ctx, name, opts...)
}

func Debug(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelDebug, msg, args...) }
func Info(ctx context.Context, msg string, args ...any)  { log(ctx, slog.LevelInfo, msg, args...) }
func Warn(ctx context.Context, msg string, args ...any)  { log(ctx, slog.LevelWarn, msg, args...) }
func Error(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelError, msg, args...) }

// ErrorWithErr logs err and marks the active span as failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	log(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	mu.RLock()
	l := global
	mu.RUnlock()

	if !l.Enabled(ctx, level) {
		return
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		args = append([]any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}, args...)
	}
	l.Log(ctx, level, msg, args...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
