// Package log builds the slog loggers used across gitsearch and carries
// correlation and request IDs through contexts.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/helixml/gitsearch/internal/config"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
)

// New creates a logger writing to w in the given format. Records logged with
// a context carry its correlation and request IDs.
func New(w io.Writer, format config.LogFormat, level string) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	switch format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		handler = newPrettyHandler(w, prettyOptions{
			Level:   lvl,
			NoColor: os.Getenv("NO_COLOR") != "",
		})
	}

	return slog.New(contextHandler{Handler: handler})
}

// FromConfig creates a logger from the configured format and level. Logs go
// to stderr so that stdout stays free for MCP stdio and CLI output.
func FromConfig(cfg config.AppConfig) *slog.Logger {
	return New(os.Stderr, cfg.LogFormat(), cfg.LogLevel())
}

// Configure creates a logger from cfg and installs it as the slog default.
func Configure(cfg config.AppConfig) *slog.Logger {
	logger := FromConfig(cfg)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel parses a level name. Unknown names mean info.
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

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// CorrelationID extracts the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// contextHandler appends context IDs to every record it handles.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := CorrelationID(ctx); id != "" {
			r.AddAttrs(slog.String(string(correlationIDKey), id))
		}
		if id := RequestID(ctx); id != "" {
			r.AddAttrs(slog.String(string(requestIDKey), id))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
