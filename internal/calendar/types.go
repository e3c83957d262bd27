package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// TimeSpec is a local wall-clock timestamp and the IANA zone it belongs to.
// DateTime has no offset, e.g. "2024-05-01T09:30:00".
type TimeSpec struct {
	DateTime string `yaml:"date_time"`
	TimeZone string `yaml:"time_zone"`
}

// Event is a candidate event that has not been persisted yet.
type Event struct {
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	Location    string   `yaml:"location"`
	Start       TimeSpec `yaml:"start"`
	End         TimeSpec `yaml:"end"`
}

// EventTime is the start or end of an event already stored in the calendar.
// Timed events carry DateTime; all-day events only carry Date (YYYY-MM-DD).
type EventTime struct {
	DateTime string
	Date     string
	TimeZone string
}

// Effective returns the bound used for comparisons: the precise timestamp if
// present, else the date-only fallback.
func (t EventTime) Effective() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// ExistingEvent is an event read back from the calendar.
type ExistingEvent struct {
	ID          string
	Summary     string
	Description string
	Location    string
	HTMLLink    string
	Start       EventTime
	End         EventTime
}

// Label is the display name of the event.
func (e ExistingEvent) Label() string {
	if e.Summary == "" {
		return "(no title)"
	}
	return e.Summary
}

// InsertedEvent is what the service returns after a successful insert.
type InsertedEvent struct {
	ID       string
	HTMLLink string
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	Primary     bool
	AccessRole  string // "owner", "writer", "reader", "freeBusyReader"
}

// toExistingEvent converts a Google Calendar event to an ExistingEvent.
// Timestamps are kept verbatim.
func toExistingEvent(event *calendar.Event) ExistingEvent {
	if event == nil {
		return ExistingEvent{}
	}

	existing := ExistingEvent{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		HTMLLink:    event.HtmlLink,
	}
	existing.Start = toEventTime(event.Start)
	existing.End = toEventTime(event.End)
	return existing
}

func toEventTime(t *calendar.EventDateTime) EventTime {
	if t == nil {
		return EventTime{}
	}
	return EventTime{
		DateTime: t.DateTime,
		Date:     t.Date,
		TimeZone: t.TimeZone,
	}
}

// toGoogleEvent converts a candidate event to the API representation.
func toGoogleEvent(event Event) *calendar.Event {
	return &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.DateTime,
			TimeZone: event.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.DateTime,
			TimeZone: event.End.TimeZone,
		},
	}
}

// toCalendarInfo converts a Google Calendar list entry to CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}
