// Package logging provides structured logging utilities for calimport.
//
// Diagnostics go through log/slog to stderr. Operator-facing messages
// (prompts, created links, the final count) are not logs and are written by
// the console package instead.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "import")
//	logger.Info("event created",
//	    logging.Calendar(calendarID),
//	    logging.Summary(event.Summary))
//
// The SlogAdapter plugs the same logger into the cron scheduler.
package logging
