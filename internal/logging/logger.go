// Package logging provides structured leveled logging for the worker.
//
// The call-site shape (Info/Warn/Error/Debug(msg, keysAndValues...)) is
// carried over from the worker's original plain-stdlib logger; the backing
// implementation is now zap so levels and field encoding are real rather
// than hand-rolled string formatting. No log sampling is configured.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger with a component prefix.
type Logger struct {
	prefix string
	sugar  *zap.SugaredLogger
}

// NewLogger creates a new logger tagged with a component prefix.
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix, sugar: base().Sugar().With("component", prefix)}
}

var baseLogger *zap.Logger

func base() *zap.Logger {
	if baseLogger != nil {
		return baseLogger
	}
	level := zapcore.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = zapcore.DebugLevel
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:       false,
		Encoding:          "json",
		EncoderConfig:     zap.NewProductionEncoderConfig(),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	l, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op core rather than panic; logging must never
		// take the worker down.
		l = zap.NewNop()
	}
	baseLogger = l
	return baseLogger
}

// Info logs an informational message with key-value pairs.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs an error message with key-value pairs.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Debug logs a debug message with key-value pairs.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// With returns a child logger with additional permanent key-value pairs,
// useful for attaching a job_id to every log line within a task.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{prefix: l.prefix, sugar: l.sugar.With(keysAndValues...)}
}

// Sync flushes any buffered log entries; call on shutdown.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
