package log

import (
	"context"
	"log/slog"
)

// slogLogger adapts *slog.Logger to Logger.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil l uses slog.Default() at call time.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) logger() *slog.Logger {
	if s.l == nil {
		return slog.Default()
	}
	return s.l
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.logger().Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.logger().Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.logger().Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.logger().Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.logger().With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger().Enabled(ctx, slog.Level(level))
}

// DefaultProvider hands out loggers backed by slog.Default().
type DefaultProvider struct{}

// GetLogger implements LoggerProvider.GetLogger.
func (DefaultProvider) GetLogger() Logger {
	return NewSlogLogger(nil)
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (DefaultProvider) GetLoggerWithName(name string) Logger {
	return NewSlogLogger(nil).With(ComponentKey, name)
}

// GetLogger returns a logger backed by the process default slog logger.
func GetLogger() Logger {
	return DefaultProvider{}.GetLogger()
}

// GetLoggerWithName returns a logger tagged with the component name.
func GetLoggerWithName(name string) Logger {
	return DefaultProvider{}.GetLoggerWithName(name)
}
