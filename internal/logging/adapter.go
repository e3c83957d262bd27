package logging

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SlogAdapter adapts an slog.Logger to cron.Logger so scheduler
// diagnostics end up in the same structured stream as everything else.
type SlogAdapter struct {
	logger *slog.Logger
}

var _ cron.Logger = (*SlogAdapter)(nil)

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Info logs routine scheduler messages. cron is chatty, so these go to debug.
// Arguments are alternating key-value pairs.
func (a *SlogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

// Error logs a scheduler error with key-value pairs.
func (a *SlogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	args := make([]interface{}, 0, len(keysAndValues)+1)
	args = append(args, Err(err))
	args = append(args, keysAndValues...)
	a.logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
