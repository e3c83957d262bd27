package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

// counterValue sums all data points of the named counter whose attributes
// contain the given key/value (or all points when key is empty).
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name, key, value string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is not an int64 sum", name)
			}
			for _, dp := range sum.DataPoints {
				if key != "" {
					v, ok := dp.Attributes.Value(attribute.Key(key))
					if !ok || v.AsString() != value {
						continue
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetrics_RecordImportEvent(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t)

	m.RecordImportEvent(ctx, OutcomeCreated)
	m.RecordImportEvent(ctx, OutcomeCreated)
	m.RecordImportEvent(ctx, OutcomeSkipped)
	m.RecordImportEvent(ctx, OutcomeFailed)

	if got := counterValue(t, reader, "import_events_total", attrOutcome, OutcomeCreated); got != 2 {
		t.Errorf("created = %d, want 2", got)
	}
	if got := counterValue(t, reader, "import_events_total", attrOutcome, OutcomeSkipped); got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
	if got := counterValue(t, reader, "import_events_total", attrOutcome, OutcomeFailed); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}
}

func TestMetrics_RecordCalendarAPIOperation(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t)

	m.RecordCalendarAPIOperation(ctx, ServiceGoogle, OperationList, StatusSuccess, 200*time.Millisecond)
	m.RecordCalendarAPIOperation(ctx, ServiceGoogle, OperationInsert, StatusError, 500*time.Millisecond)
	m.RecordCalendarAPIOperation(ctx, ServiceCalDAV, OperationResolve, StatusSuccess, 100*time.Millisecond)

	if got := counterValue(t, reader, "calendar_api_operations_total", "", ""); got != 3 {
		t.Errorf("operations = %d, want 3", got)
	}
	if got := counterValue(t, reader, "calendar_api_operations_total", attrStatus, StatusError); got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}
	if got := counterValue(t, reader, "calendar_api_operations_total", attrService, ServiceCalDAV); got != 1 {
		t.Errorf("caldav operations = %d, want 1", got)
	}
}

func TestMetrics_RecordConflictAndRun(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t)

	m.RecordConflict(ctx)
	m.RecordImportRun(ctx, StatusSuccess, 2*time.Second)

	if got := counterValue(t, reader, "conflicts_detected_total", "", ""); got != 1 {
		t.Errorf("conflicts = %d, want 1", got)
	}
	if got := counterValue(t, reader, "import_runs_total", attrStatus, StatusSuccess); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *Metrics
	nilMetrics.RecordImportEvent(ctx, OutcomeCreated)
	nilMetrics.RecordConflict(ctx)
	nilMetrics.RecordImportRun(ctx, StatusSuccess, time.Second)
	nilMetrics.RecordCalendarAPIOperation(ctx, ServiceGoogle, OperationList, StatusSuccess, time.Second)

	empty := &Metrics{}
	empty.RecordImportEvent(ctx, OutcomeSkipped)
	empty.RecordCalendarAPIOperation(ctx, ServiceGoogle, OperationList, StatusSuccess, time.Second)
}
