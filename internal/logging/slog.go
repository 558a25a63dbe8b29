package logging

import (
	"context"
	"log/slog"
)

// SlogLogger adapts a configured *slog.Logger to the Logger interface.
// The server constructs one with a JSON handler at startup and hands child
// loggers to each component via With.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an already configured slog.Logger. Handler choice and
// level stay with the caller.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

// With returns a child SlogLogger carrying the extra key-value pairs.
func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
