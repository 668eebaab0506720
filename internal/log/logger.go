// Package log wraps log/slog with CertiPro's handler setup and error
// attributes.
package log

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

// Logger is a slog.Logger that remembers its Config and knows how to
// describe RequestErrors.
type Logger struct {
	*slog.Logger
	config Config
}

// New builds a Logger writing to config.Output.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}

	w := config.Output.Writer()
	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if config.Format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	}

	base := slog.New(handler)
	if config.ServiceName != "" {
		base = base.With("service", config.ServiceName, "version", config.ServiceVersion)
	}
	return &Logger{Logger: base, config: config}
}

// Discard returns a Logger that drops every record. Components use it
// until a real logger is injected.
func Discard() *Logger {
	return New(Config{Level: LevelInfo, Output: OutputDiscard()})
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), config: l.config}
}

func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name), config: l.config}
}

// WithError attaches err to every record. RequestErrors contribute their
// code, HTTP status, suggestions and cause.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.With(errorAttrs(err)...)
}

// LogError writes err at error level.
func (l *Logger) LogError(err error) {
	l.LogErrorContext(context.Background(), err)
}

func (l *Logger) LogErrorContext(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.ErrorContext(ctx, "operation failed", errorAttrs(err)...)
}

// Enabled reports whether records at level are written.
func (l *Logger) Enabled(ctx context.Context, level Level) bool {
	return l.Logger.Enabled(ctx, level.ToSlogLevel())
}

func (l *Logger) Config() Config { return l.config }

func errorAttrs(err error) []any {
	reqErr, ok := errors.AsRequestError(err)
	if !ok {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error", reqErr.Message,
		"error_code", string(reqErr.Code),
		"status", reqErr.StatusCode,
	}
	if len(reqErr.Suggestions) > 0 {
		attrs = append(attrs, "suggestions", reqErr.Suggestions)
	}
	if reqErr.Cause != nil {
		attrs = append(attrs, "cause", reqErr.Cause.Error())
	}
	return attrs
}
