package importer

import (
	"context"
	"fmt"

	"github.com/teemow/calimport/internal/calendar"
)

// Prompt labels for the six fields of a manual event, in asking order.
const (
	FieldName        = "Name"
	FieldDate        = "Date (YYYY-MM-DD)"
	FieldStartTime   = "Start time (HH:MM:SS)"
	FieldEndTime     = "End time (HH:MM:SS)"
	FieldLocation    = "Location"
	FieldDescription = "Description"
)

// Fields lists the prompt labels in the order they are asked.
var Fields = []string{FieldName, FieldDate, FieldStartTime, FieldEndTime, FieldLocation, FieldDescription}

// FieldPrompter reads one free-text answer for a labelled field.
type FieldPrompter interface {
	PromptField(ctx context.Context, label string) (string, error)
}

// Builder turns operator answers into a single candidate event and runs it
// through the importer once.
type Builder struct {
	importer *Importer
	prompter FieldPrompter
	timeZone string
}

// NewBuilder creates a Builder. timeZone is attached to both bounds.
func NewBuilder(im *Importer, prompter FieldPrompter, timeZone string) *Builder {
	return &Builder{
		importer: im,
		prompter: prompter,
		timeZone: timeZone,
	}
}

// Collect asks for the six fields and assembles the event. The date and the
// times are joined as date + "T" + time; nothing is validated here.
func (b *Builder) Collect(ctx context.Context) (calendar.Event, error) {
	answers := make(map[string]string, len(Fields))
	for _, field := range Fields {
		answer, err := b.prompter.PromptField(ctx, field)
		if err != nil {
			return calendar.Event{}, fmt.Errorf("failed to read %s: %w", field, err)
		}
		answers[field] = answer
	}

	date := answers[FieldDate]
	return calendar.Event{
		Summary:     answers[FieldName],
		Location:    answers[FieldLocation],
		Description: answers[FieldDescription],
		Start: calendar.TimeSpec{
			DateTime: date + "T" + answers[FieldStartTime],
			TimeZone: b.timeZone,
		},
		End: calendar.TimeSpec{
			DateTime: date + "T" + answers[FieldEndTime],
			TimeZone: b.timeZone,
		},
	}, nil
}

// Run collects one event and applies the check, confirm and insert protocol.
// A declined conflict returns ErrDeclined; nothing is counted.
func (b *Builder) Run(ctx context.Context, calendarID string) (*calendar.InsertedEvent, error) {
	candidate, err := b.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return b.importer.ImportOne(ctx, calendarID, candidate)
}
