package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/conflict"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
)

// DefaultLookahead is how many upcoming events are fetched per candidate.
const DefaultLookahead = 10

// ErrDeclined is returned when the operator does not confirm a conflicting
// candidate.
var ErrDeclined = errors.New("event not created: conflict declined")

// Result counts what happened to a batch.
type Result struct {
	Created    int
	Skipped    int
	Failed     int
	Conflicted int
}

// Total is the number of candidates that were processed.
func (r Result) Total() int {
	return r.Created + r.Skipped + r.Failed
}

// Importer runs candidates through the check, confirm and insert protocol.
type Importer struct {
	gateway   calendar.Gateway
	decider   Decider
	reporter  Reporter
	lookahead int
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLookahead sets how many upcoming events are compared per candidate.
func WithLookahead(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.lookahead = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// WithMetrics records per-event and per-run metrics.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(im *Importer) { im.metrics = m }
}

// WithAuditLogger writes one audit line per candidate.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(im *Importer) { im.audit = al }
}

// New creates an Importer. A nil reporter discards outcome messages.
func New(gateway calendar.Gateway, decider Decider, reporter Reporter, opts ...Option) *Importer {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if decider == nil {
		decider = AlwaysSkip
	}
	im := &Importer{
		gateway:   gateway,
		decider:   decider,
		reporter:  reporter,
		lookahead: DefaultLookahead,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportAll processes candidates strictly in order. Per-event failures are
// reported and counted; only context cancellation ends the batch early, in
// which case the partial result is returned along with the context error.
func (im *Importer) ImportAll(ctx context.Context, calendarID string, candidates []calendar.Event) (Result, error) {
	ctx, span := instrumentation.StartSpan(ctx, "import.run",
		attribute.String(instrumentation.SpanAttrCalendarID, calendarID),
		attribute.Int(instrumentation.SpanAttrCandidates, len(candidates)),
	)
	defer span.End()

	started := time.Now()
	logger := logging.WithOperation(im.logger, "import").With(logging.Calendar(calendarID))
	logger.Info("starting import", slog.Int("candidates", len(candidates)))

	var result Result
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return im.finishRun(ctx, span, logger, result, started, err)
		}

		out := im.process(ctx, calendarID, candidate)
		if out.conflicts > 0 {
			result.Conflicted++
		}

		switch {
		case out.err == nil:
			result.Created++
			im.reporter.EventCreated(candidate, out.inserted)
		case errors.Is(out.err, ErrDeclined):
			result.Skipped++
			im.reporter.EventSkipped(candidate, out.conflictSet)
		case ctx.Err() != nil:
			return im.finishRun(ctx, span, logger, result, started, ctx.Err())
		default:
			result.Failed++
			im.reporter.EventFailed(candidate, out.err)
		}
	}

	im.reporter.ImportFinished(result)
	return im.finishRun(ctx, span, logger, result, started, nil)
}

func (im *Importer) finishRun(ctx context.Context, span trace.Span, logger *slog.Logger, result Result, started time.Time, err error) (Result, error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	}
	im.metrics.RecordImportRun(ctx, status, time.Since(started))
	span.SetAttributes(
		attribute.Int("import.created", result.Created),
		attribute.Int("import.skipped", result.Skipped),
		attribute.Int("import.failed", result.Failed),
	)

	logger.Info("import finished",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
		logging.Status(status),
		logging.Err(err),
	)
	return result, err
}

// ImportOne runs the protocol once. It returns ErrDeclined when the
// candidate conflicts and the decider does not confirm it.
func (im *Importer) ImportOne(ctx context.Context, calendarID string, candidate calendar.Event) (*calendar.InsertedEvent, error) {
	out := im.process(ctx, calendarID, candidate)
	return out.inserted, out.err
}

type outcome struct {
	inserted    *calendar.InsertedEvent
	conflictSet conflict.Set
	conflicts   int
	err         error
}

func (im *Importer) process(ctx context.Context, calendarID string, candidate calendar.Event) (out outcome) {
	ctx, span := instrumentation.StartSpan(ctx, "import.event",
		attribute.String(instrumentation.SpanAttrSummary, candidate.Summary),
	)
	defer span.End()

	logger := im.logger.With(logging.Calendar(calendarID), logging.Summary(candidate.Summary))

	defer func() {
		label := instrumentation.OutcomeCreated
		switch {
		case errors.Is(out.err, ErrDeclined):
			label = instrumentation.OutcomeSkipped
		case out.err != nil:
			label = instrumentation.OutcomeFailed
			instrumentation.SetSpanError(span, out.err)
		default:
			instrumentation.SetSpanSuccess(span)
		}
		span.SetAttributes(
			attribute.String(instrumentation.SpanAttrOutcome, label),
			attribute.Int(instrumentation.SpanAttrConflicts, out.conflicts),
		)
		im.metrics.RecordImportEvent(ctx, label)
		im.auditOutcome(ctx, calendarID, candidate, label, out)
	}()

	existing, err := im.gateway.ListUpcoming(ctx, calendarID, im.lookahead)
	if err != nil {
		logger.Warn("failed to fetch upcoming events", logging.Err(err))
		out.err = fmt.Errorf("failed to check conflicts for %q: %w", candidate.Summary, err)
		return out
	}

	out.conflictSet = conflict.Detect(existing, candidate)
	out.conflicts = len(out.conflictSet)
	if !out.conflictSet.Empty() {
		im.metrics.RecordConflict(ctx)
		logger.Debug("candidate overlaps existing events", slog.Int("conflicts", out.conflicts))

		ok, err := im.decider.ConfirmConflict(ctx, candidate, out.conflictSet)
		if err != nil {
			logger.Warn("conflict decision failed, skipping", logging.Err(err))
		}
		if err != nil || !ok {
			out.err = ErrDeclined
			return out
		}
	}

	inserted, err := im.gateway.Insert(ctx, calendarID, candidate)
	if err != nil {
		logger.Warn("insert failed", logging.Err(err))
		out.err = err
		return out
	}

	if inserted == nil {
		inserted = &calendar.InsertedEvent{}
	}
	logger.Debug("event created", slog.String("event_id", inserted.ID))
	out.inserted = inserted
	return out
}

func (im *Importer) auditOutcome(ctx context.Context, calendarID string, candidate calendar.Event, label string, out outcome) {
	if im.audit == nil {
		return
	}
	record := &instrumentation.ImportOutcome{
		CalendarID:  calendarID,
		Summary:     candidate.Summary,
		Start:       candidate.Start.DateTime,
		End:         candidate.End.DateTime,
		Location:    candidate.Location,
		Description: candidate.Description,
		Outcome:     label,
		Conflicts:   out.conflicts,
	}
	if out.inserted != nil {
		record.EventID = out.inserted.ID
	}
	if label == instrumentation.OutcomeFailed {
		record.Error = out.err.Error()
	}
	im.audit.LogImportOutcome(ctx, record)
}
