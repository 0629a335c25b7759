// Package logger configures the application's structured logging.
//
// It builds on Go's log/slog package to emit JSON logs with a
// configurable level, and installs the result as the default logger.
package logger
