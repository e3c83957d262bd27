package importer

import (
	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/conflict"
)

// Reporter receives the operator-facing outcome of every candidate.
type Reporter interface {
	EventCreated(candidate calendar.Event, inserted *calendar.InsertedEvent)
	EventSkipped(candidate calendar.Event, conflicts conflict.Set)
	EventFailed(candidate calendar.Event, err error)
	ImportFinished(result Result)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) EventCreated(calendar.Event, *calendar.InsertedEvent) {}
func (NopReporter) EventSkipped(calendar.Event, conflict.Set)             {}
func (NopReporter) EventFailed(calendar.Event, error)                     {}
func (NopReporter) ImportFinished(Result)                                 {}
