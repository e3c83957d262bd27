package console

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/conflict"
	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/source"
)

func newConsole(input string) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

var standup = calendar.ExistingEvent{
	Summary: "Standup",
	Start:   calendar.EventTime{DateTime: "2024-05-01T09:00:00+02:00"},
	End:     calendar.EventTime{DateTime: "2024-05-01T10:00:00+02:00"},
}

func TestConsole_ReadLine(t *testing.T) {
	c, out := newConsole("first\r\nlast")

	line, err := c.ReadLine(t.Context(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = c.ReadLine(t.Context(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = c.ReadLine(t.Context(), "> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

func TestConsole_PromptField(t *testing.T) {
	c, out := newConsole("Review\n")

	answer, err := c.PromptField(t.Context(), importer.FieldName)
	require.NoError(t, err)
	assert.Equal(t, "Review", answer)
	assert.Equal(t, "Name: ", out.String())
}

func TestConsole_ConfirmConflict(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: " Y \n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "maybe\n", want: false},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, out := newConsole(tt.input)

			ok, err := c.ConfirmConflict(t.Context(), calendar.Event{Summary: "Review"}, conflict.Set{standup})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), `"Review" overlaps`)
			assert.Contains(t, out.String(), "- Standup (2024-05-01T09:00:00+02:00)")
		})
	}
}

func TestConsole_Reporter(t *testing.T) {
	c, out := newConsole("")

	c.EventCreated(calendar.Event{Summary: "Review"}, &calendar.InsertedEvent{HTMLLink: "https://calendar/e/1"})
	c.EventCreated(calendar.Event{Summary: "Retro"}, &calendar.InsertedEvent{})
	c.EventSkipped(calendar.Event{Summary: "Lunch"}, conflict.Set{standup})
	c.EventFailed(calendar.Event{Summary: "Sync"}, &calendar.InsertError{Summary: "Sync", Cause: errors.New("quota exceeded")})
	c.EventFailed(calendar.Event{Summary: "Demo"}, errors.New("connection reset"))
	c.ImportFinished(importer.Result{Created: 2, Skipped: 1, Failed: 2})

	got := out.String()
	assert.Contains(t, got, "Event created: https://calendar/e/1")
	assert.Contains(t, got, "Event created: Retro")
	assert.Contains(t, got, `Skipped "Lunch".`)
	assert.Contains(t, got, `failed to create event "Sync": quota exceeded`)
	assert.Contains(t, got, `Could not create "Demo": connection reset`)
	assert.Contains(t, got, "2 events created.")
	assert.Contains(t, got, "1 skipped, 2 failed.")
}

func TestConsole_ImportFinishedCleanRun(t *testing.T) {
	c, out := newConsole("")
	c.ImportFinished(importer.Result{Created: 3})
	assert.Contains(t, out.String(), "3 events created.")
	assert.NotContains(t, out.String(), "skipped")
}

func TestConsole_PrintUpcoming(t *testing.T) {
	c, out := newConsole("")
	c.PrintUpcoming(nil)
	assert.Contains(t, out.String(), "No upcoming events found.")

	out.Reset()
	c.PrintUpcoming([]calendar.ExistingEvent{
		standup,
		{Location: "Park", Start: calendar.EventTime{Date: "2024-05-03"}, End: calendar.EventTime{Date: "2024-05-04"}},
	})
	got := out.String()
	assert.Contains(t, got, "2024-05-01T09:00:00+02:00 - 2024-05-01T10:00:00+02:00  Standup")
	assert.Contains(t, got, "2024-05-03 - 2024-05-04  (no title) @ Park")
}

func TestConsole_PrintCalendars(t *testing.T) {
	c, out := newConsole("")
	c.PrintCalendars([]calendar.CalendarInfo{
		{ID: "primary@example.com", Summary: "Me", Primary: true},
		{ID: "team@group", Summary: "Team"},
	})
	assert.Contains(t, out.String(), "Me (primary)  primary@example.com")
	assert.Contains(t, out.String(), "Team  team@group")
}

func TestConsole_ReportRejected(t *testing.T) {
	c, out := newConsole("")
	c.ReportRejected(nil)
	assert.Empty(t, out.String())

	c.ReportRejected([]source.RecordError{
		{Unit: "line", Position: 3, Reason: "missing summary"},
		{Unit: "line", Position: 5, Summary: "Retro", Reason: "end is not after start"},
	})
	got := out.String()
	assert.Contains(t, got, "2 records could not be read:")
	assert.Contains(t, got, "line 3: missing summary")
	assert.Contains(t, got, `line 5 ("Retro"): end is not after start`)
}
