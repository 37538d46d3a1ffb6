package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// Transport is an http.RoundTripper that logs every outgoing call.
// Request and response bodies are never logged since they may carry credentials.
type Transport struct {
	Base   http.RoundTripper
	Logger *Logger
}

// NewTransport wraps base (http.DefaultTransport when nil)
func NewTransport(base http.RoundTripper, logger *Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = New(DefaultConfig())
	}
	return &Transport{Base: base, Logger: logger.WithComponent(ComponentHTTP)}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := r.Context()

	t.Logger.DebugContext(ctx, "HTTP request started",
		FieldMethod, r.Method,
		FieldPath, r.URL.Path)

	resp, err := t.Base.RoundTrip(r)
	durationMs := time.Since(start).Milliseconds()
	if err != nil {
		t.Logger.WarnContext(ctx, "HTTP request failed",
			FieldMethod, r.Method,
			FieldPath, r.URL.Path,
			FieldDuration, durationMs,
			FieldError, err.Error())
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		level = slog.LevelWarn
	} else if resp.StatusCode >= 500 {
		level = slog.LevelError
	}
	t.Logger.Logger.Log(ctx, level, "HTTP request completed",
		FieldComponent, t.Logger.component,
		FieldMethod, r.Method,
		FieldPath, r.URL.Path,
		FieldStatusCode, resp.StatusCode,
		FieldDuration, durationMs)

	return resp, nil
}
