package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
)

// Lister is implemented by gateways that can enumerate calendars.
type Lister interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
}

// Instrumented decorates a Gateway with metrics, spans and debug logs.
type Instrumented struct {
	next    Gateway
	service string
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

var _ Gateway = (*Instrumented)(nil)

// Instrument wraps next. metrics and logger may be nil.
func Instrument(next Gateway, service string, metrics *instrumentation.Metrics, logger *slog.Logger) *Instrumented {
	if logger == nil {
		logger = slog.Default()
	}
	return &Instrumented{
		next:    next,
		service: service,
		metrics: metrics,
		logger:  logger,
	}
}

func (g *Instrumented) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	duration := time.Since(start)
	g.metrics.RecordCalendarAPIOperation(ctx, g.service, operation, status, duration)
	g.logger.DebugContext(ctx, "calendar call",
		logging.Operation(g.service+"."+operation),
		logging.Status(status),
		slog.Duration("duration", duration),
	)
}

func (g *Instrumented) ResolveCalendarID(ctx context.Context, name string) (id string, found bool, err error) {
	ctx, span := instrumentation.StartCalendarAPISpan(ctx, g.service, instrumentation.OperationResolve)
	defer span.End()
	defer func(start time.Time) { g.observe(ctx, instrumentation.OperationResolve, start, err) }(time.Now())

	id, found, err = g.next.ResolveCalendarID(ctx, name)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return "", false, err
	}
	span.SetAttributes(attribute.Bool("calendar.found", found))
	instrumentation.SetSpanSuccess(span)
	return id, found, nil
}

func (g *Instrumented) ListUpcoming(ctx context.Context, calendarID string, limit int) (events []ExistingEvent, err error) {
	ctx, span := instrumentation.StartCalendarAPISpan(ctx, g.service, instrumentation.OperationList,
		attribute.String(instrumentation.SpanAttrCalendarID, calendarID),
		attribute.Int("calendar.limit", limit),
	)
	defer span.End()
	defer func(start time.Time) { g.observe(ctx, instrumentation.OperationList, start, err) }(time.Now())

	events, err = g.next.ListUpcoming(ctx, calendarID, limit)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("calendar.events", len(events)))
	instrumentation.SetSpanSuccess(span)
	return events, nil
}

func (g *Instrumented) Insert(ctx context.Context, calendarID string, event Event) (inserted *InsertedEvent, err error) {
	ctx, span := instrumentation.StartCalendarAPISpan(ctx, g.service, instrumentation.OperationInsert,
		attribute.String(instrumentation.SpanAttrCalendarID, calendarID),
		attribute.String(instrumentation.SpanAttrSummary, event.Summary),
	)
	defer span.End()
	defer func(start time.Time) { g.observe(ctx, instrumentation.OperationInsert, start, err) }(time.Now())

	inserted, err = g.next.Insert(ctx, calendarID, event)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return inserted, nil
}

// ListCalendars forwards to the wrapped gateway when it is a Lister.
func (g *Instrumented) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	lister, ok := g.next.(Lister)
	if !ok {
		return nil, fmt.Errorf("%s backend cannot list calendars", g.service)
	}
	return lister.ListCalendars(ctx)
}
