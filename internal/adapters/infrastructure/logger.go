package infrastructure

import (
	"log/slog"

	"cardbinder.app/internal/ports"
)

// SlogLoggerAdapter implements the Logger port using slog.
// A zero value logs through slog's process-wide default logger.
type SlogLoggerAdapter struct {
	logger *slog.Logger
}

// NewSlogLoggerAdapter creates a logger adapter bound to l; nil means the default logger
func NewSlogLoggerAdapter(l *slog.Logger) *SlogLoggerAdapter {
	return &SlogLoggerAdapter{logger: l}
}

// Debug logs a debug message
func (l *SlogLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	l.target().Debug(msg, fieldArgs(fields)...)
}

// Info logs an info message
func (l *SlogLoggerAdapter) Info(msg string, fields ...ports.Field) {
	l.target().Info(msg, fieldArgs(fields)...)
}

// Warn logs a warning message
func (l *SlogLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	l.target().Warn(msg, fieldArgs(fields)...)
}

// Error logs an error message
func (l *SlogLoggerAdapter) Error(msg string, fields ...ports.Field) {
	l.target().Error(msg, fieldArgs(fields)...)
}

// With returns a logger that adds fields to every entry
func (l *SlogLoggerAdapter) With(fields ...ports.Field) *SlogLoggerAdapter {
	return &SlogLoggerAdapter{logger: l.target().With(fieldArgs(fields)...)}
}

func (l *SlogLoggerAdapter) target() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}

func fieldArgs(fields []ports.Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, field := range fields {
		if err, ok := field.Value.(error); ok {
			args = append(args, field.Key, err.Error())
			continue
		}
		args = append(args, field.Key, field.Value)
	}
	return args
}
