// Package logging provides structured logging configuration using log/slog.
//
// Loggers obtained through FromContext carry the chi request ID and the
// table view session ID, so every entry of one request can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/tableview/internal/config"
	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

// Setup configures the global slog logger from the logging config and
// returns it.
//
// Use "json" format in production for machine parsing.
// Use "text" format in development for human readability.
func Setup(cfg config.LoggingConfig) *slog.Logger {
	logger := New(os.Stdout, cfg.Level, cfg.Format)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns the default logger enriched with request context.
//
// Usage:
//
//	func handleView(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("column hidden", "table", tableKey, "column", columnKey)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	return enrich(ctx, slog.Default())
}

func enrich(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if sessionID := core.SessionIDFromContext(ctx); sessionID != "" {
		logger = logger.With("session", sessionID)
	}
	if ip := core.GetIPAddressFromContext(ctx); ip != "" {
		logger = logger.With("ip", ip)
	}
	return logger
}

// WithFields returns a request logger with additional structured fields.
//
//	exportLogger := logging.WithFields(ctx, "table", tableKey, "export_id", id)
//	exportLogger.Info("export queued")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
