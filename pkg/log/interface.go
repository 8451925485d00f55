// Package log provides a structured logging interface for trafobench.
//
// The Logger interface is slog-compatible in shape and is backed by zerolog in
// production (see NewZerologLogger) and by an in-memory TestLogger in tests.
// Field names come from the attribute keys in attributes.go so that runs can be
// filtered by variant, classifier or metric.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.VariantKey, "scaled data",
//	    log.ComponentKey, "evaluation",
//	)
//	logger.Info("classifier scored",
//	    log.ClassifierKey, "GaussianNB",
//	    log.AccuracyKey, 0.78,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key-value pairs. Error additionally accepts an error
// as its first field, which is logged under "error" together with the
// stacktrace recorded by cockroachdb/errors.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	//
	// Example:
	//   logger.Error("render failed",
	//       err,
	//       log.ArtifactKey, "correlation.png",
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
