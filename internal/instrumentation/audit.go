package instrumentation

import (
	"context"
	"log/slog"
)

// ImportOutcome is one audited candidate event.
type ImportOutcome struct {
	CalendarID  string
	Summary     string
	Start       string
	End         string
	Location    string
	Description string

	// Outcome is one of OutcomeCreated, OutcomeSkipped, OutcomeFailed.
	Outcome   string
	EventID   string
	Conflicts int
	Error     string

	TraceID string
}

// LogAttrs returns slog attributes for the audit line. Location and
// description are only included when details is true.
func (o *ImportOutcome) LogAttrs(details bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("calendar_id", o.CalendarID),
		slog.String("summary", o.Summary),
		slog.String("start", o.Start),
		slog.String("end", o.End),
		slog.String("outcome", o.Outcome),
		slog.Int("conflicts", o.Conflicts),
	}

	if o.EventID != "" {
		attrs = append(attrs, slog.String("event_id", o.EventID))
	}
	if details {
		if o.Location != "" {
			attrs = append(attrs, slog.String("location", o.Location))
		}
		if o.Description != "" {
			attrs = append(attrs, slog.String("description", o.Description))
		}
	}
	if o.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", o.TraceID))
	}
	if o.Error != "" {
		attrs = append(attrs, slog.String("error", o.Error))
	}

	return attrs
}

// AuditLogger writes one structured line per import outcome.
type AuditLogger struct {
	logger         *slog.Logger
	includeDetails bool
	enabled        bool
}

// NewAuditLogger creates an enabled AuditLogger without event details.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:         logger,
		includeDetails: config.IncludeDetails,
		enabled:        config.Enabled,
	}
}

// LogImportOutcome logs one import outcome. Failures are logged at warn level.
// A nil AuditLogger is a no-op.
func (al *AuditLogger) LogImportOutcome(ctx context.Context, o *ImportOutcome) {
	if al == nil || !al.enabled || o == nil {
		return
	}

	if o.TraceID == "" {
		o.TraceID = GetTraceID(ctx)
	}

	level := slog.LevelInfo
	if o.Outcome == OutcomeFailed {
		level = slog.LevelWarn
	}

	al.logger.LogAttrs(ctx, level, "import_event", o.LogAttrs(al.includeDetails)...)
}
