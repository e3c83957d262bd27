package calendar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/calimport/internal/instrumentation"
)

type stubGateway struct {
	id       string
	found    bool
	events   []ExistingEvent
	inserted *InsertedEvent
	err      error
}

func (s *stubGateway) ResolveCalendarID(context.Context, string) (string, bool, error) {
	return s.id, s.found, s.err
}

func (s *stubGateway) ListUpcoming(context.Context, string, int) ([]ExistingEvent, error) {
	return s.events, s.err
}

func (s *stubGateway) Insert(context.Context, string, Event) (*InsertedEvent, error) {
	return s.inserted, s.err
}

func operationCount(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "calendar_api_operations_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestInstrumented_PassesThrough(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	metrics, err := instrumentation.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	stub := &stubGateway{
		id:       "cal-1",
		found:    true,
		events:   []ExistingEvent{{ID: "e1"}},
		inserted: &InsertedEvent{ID: "new"},
	}
	g := Instrument(stub, instrumentation.ServiceGoogle, metrics, nil)

	id, found, err := g.ResolveCalendarID(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, "cal-1", id)
	assert.True(t, found)

	events, err := g.ListUpcoming(ctx, "cal-1", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	inserted, err := g.Insert(ctx, "cal-1", Event{Summary: "x"})
	require.NoError(t, err)
	assert.Equal(t, "new", inserted.ID)

	assert.Equal(t, int64(3), operationCount(t, reader))
}

func TestInstrumented_PreservesErrors(t *testing.T) {
	insertErr := &InsertError{Summary: "x", Cause: errors.New("denied")}
	g := Instrument(&stubGateway{err: insertErr}, instrumentation.ServiceCalDAV, nil, nil)

	_, err := g.Insert(context.Background(), "cal", Event{Summary: "x"})
	var target *InsertError
	assert.True(t, errors.As(err, &target))

	_, found, err := g.ResolveCalendarID(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestInstrumented_ListCalendarsUnsupported(t *testing.T) {
	g := Instrument(&stubGateway{}, instrumentation.ServiceCalDAV, nil, nil)
	_, err := g.ListCalendars(context.Background())
	assert.Error(t, err)
}
