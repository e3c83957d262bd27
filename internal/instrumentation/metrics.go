package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrOutcome   = "outcome"
)

// Metrics provides methods for recording observability metrics.
// A nil or zero Metrics is a valid no-op recorder.
type Metrics struct {
	// Calendar backend metrics
	calendarAPIOperationsTotal   metric.Int64Counter
	calendarAPIOperationDuration metric.Float64Histogram

	// Import metrics
	importEventsTotal       metric.Int64Counter
	conflictsDetectedTotal  metric.Int64Counter
	importRunsTotal         metric.Int64Counter
	importRunDurationSecond metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.calendarAPIOperationsTotal, err = meter.Int64Counter(
		"calendar_api_operations_total",
		metric.WithDescription("Total number of calendar backend operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operations_total counter: %w", err)
	}

	m.calendarAPIOperationDuration, err = meter.Float64Histogram(
		"calendar_api_operation_duration_seconds",
		metric.WithDescription("Calendar backend operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operation_duration_seconds histogram: %w", err)
	}

	m.importEventsTotal, err = meter.Int64Counter(
		"import_events_total",
		metric.WithDescription("Total number of candidate events processed, by outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import_events_total counter: %w", err)
	}

	m.conflictsDetectedTotal, err = meter.Int64Counter(
		"conflicts_detected_total",
		metric.WithDescription("Total number of candidates that overlapped an existing event"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conflicts_detected_total counter: %w", err)
	}

	m.importRunsTotal, err = meter.Int64Counter(
		"import_runs_total",
		metric.WithDescription("Total number of batch import runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import_runs_total counter: %w", err)
	}

	m.importRunDurationSecond, err = meter.Float64Histogram(
		"import_run_duration_seconds",
		metric.WithDescription("Batch import run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 300.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import_run_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordCalendarAPIOperation records a calendar backend call.
//
// Parameters:
//   - service: backend name (google, caldav)
//   - operation: gateway operation (resolve, list, insert)
//   - status: "success" or "error"
//   - duration: time taken for the call
func (m *Metrics) RecordCalendarAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.calendarAPIOperationsTotal == nil || m.calendarAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.calendarAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calendarAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordImportEvent records the outcome of one candidate event.
// Outcome is one of OutcomeCreated, OutcomeSkipped, OutcomeFailed.
func (m *Metrics) RecordImportEvent(ctx context.Context, outcome string) {
	if m == nil || m.importEventsTotal == nil {
		return
	}

	m.importEventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordConflict records a candidate that overlapped at least one existing event.
func (m *Metrics) RecordConflict(ctx context.Context) {
	if m == nil || m.conflictsDetectedTotal == nil {
		return
	}

	m.conflictsDetectedTotal.Add(ctx, 1)
}

// RecordImportRun records a finished batch import run.
func (m *Metrics) RecordImportRun(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.importRunsTotal == nil || m.importRunDurationSecond == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.importRunsTotal.Add(ctx, 1, attrs)
	m.importRunDurationSecond.Record(ctx, duration.Seconds(), attrs)
}
