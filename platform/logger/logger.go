// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// VisitorIDKey is the context key for visitor ID
	VisitorIDKey contextKey = "visitor_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and visitor_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if visitorID, ok := ctx.Value(VisitorIDKey).(string); ok && visitorID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("visitor_id", visitorID)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// CatalogRefresh logs a completed catalog refresh.
func (l *Logger) CatalogRefresh(items int, durationMs int64, trigger string) {
	l.Info("catalog_refresh",
		slog.Int("items", items),
		slog.Int64("duration_ms", durationMs),
		slog.String("trigger", trigger),
	)
}

// CatalogError logs a failed catalog fetch. The system keeps serving the
// last-known-good snapshot, so this is the only trace of the failure.
func (l *Logger) CatalogError(source string, err error) {
	l.Error("catalog_error",
		slog.String("source", source),
		slog.String("error", err.Error()),
	)
}

// GenerationError logs a generation-service failure; the caller degrades
// to a deterministic fallback reply.
func (l *Logger) GenerationError(operation string, err error) {
	l.Error("generation_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
