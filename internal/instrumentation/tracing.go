package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for calimport.
const TracerName = "github.com/teemow/calimport"

// Span attribute keys.
const (
	// SpanAttrService is the calendar backend name attribute.
	SpanAttrService = "calendar.service"

	// SpanAttrOperation is the gateway operation attribute.
	SpanAttrOperation = "calendar.operation"

	// SpanAttrCalendarID is the target calendar identifier.
	SpanAttrCalendarID = "calendar.id"

	// SpanAttrSummary is the candidate event summary.
	SpanAttrSummary = "import.summary"

	// SpanAttrOutcome is the per-event import outcome.
	SpanAttrOutcome = "import.outcome"

	// SpanAttrConflicts is the number of overlapping existing events.
	SpanAttrConflicts = "import.conflicts"

	// SpanAttrCandidates is the batch size.
	SpanAttrCandidates = "import.candidates"
)

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartCalendarAPISpan starts a client span named calendar.<service>.<operation>.
func StartCalendarAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs,
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	)
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "calendar."+service+"."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
