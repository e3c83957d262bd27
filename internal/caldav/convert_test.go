package caldav

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calimport/internal/calendar"
)

func decode(t *testing.T, lines ...string) *ical.Calendar {
	t.Helper()
	body := strings.Join(append(append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
	}, lines...), "END:VCALENDAR"), "\r\n") + "\r\n"
	cal, err := ical.NewDecoder(strings.NewReader(body)).Decode()
	require.NoError(t, err)
	return cal
}

func testLink(p string) string { return "https://dav.example.com" + p }

func objectsOf(cals ...*ical.Calendar) []caldav.CalendarObject {
	objects := make([]caldav.CalendarObject, 0, len(cals))
	for i, cal := range cals {
		objects = append(objects, caldav.CalendarObject{
			Path: fmt.Sprintf("/cal/%d.ics", i),
			Data: cal,
		})
	}
	return objects
}

func TestUpcoming_SortsFiltersAndTruncates(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	cals := []*ical.Calendar{
		decode(t,
			"BEGIN:VEVENT",
			"UID:ended",
			"SUMMARY:Breakfast",
			"DTSTART;TZID=Europe/Oslo:20240501T090000",
			"DTEND;TZID=Europe/Oslo:20240501T100000",
			"END:VEVENT",
		),
		decode(t,
			"BEGIN:VEVENT",
			"UID:utc",
			"SUMMARY:Call",
			"DTSTART:20240502T120000Z",
			"DTEND:20240502T130000Z",
			"END:VEVENT",
		),
		decode(t,
			"BEGIN:VEVENT",
			"UID:allday",
			"SUMMARY:Holiday",
			"DTSTART;VALUE=DATE:20240503",
			"DTEND;VALUE=DATE:20240504",
			"END:VEVENT",
		),
		decode(t,
			"BEGIN:VEVENT",
			"UID:local",
			"SUMMARY:Review",
			"LOCATION:Room 1",
			"DTSTART;TZID=Europe/Oslo:20240501T110000",
			"DTEND;TZID=Europe/Oslo:20240501T120000",
			"END:VEVENT",
		),
	}

	events := upcoming(objectsOf(cals...), now, now.Add(DefaultHorizon), 10, testLink)
	require.Len(t, events, 3)

	assert.Equal(t, "local", events[0].ID)
	assert.Equal(t, "Room 1", events[0].Location)
	assert.Equal(t, calendar.EventTime{DateTime: "2024-05-01T11:00:00", TimeZone: "Europe/Oslo"}, events[0].Start)
	assert.Equal(t, "2024-05-01T12:00:00", events[0].End.DateTime)

	assert.Equal(t, "utc", events[1].ID)
	assert.Equal(t, "2024-05-02T12:00:00Z", events[1].Start.DateTime)
	assert.Equal(t, "UTC", events[1].Start.TimeZone)

	assert.Equal(t, "allday", events[2].ID)
	assert.Equal(t, calendar.EventTime{Date: "2024-05-03"}, events[2].Start)
	assert.Equal(t, "2024-05-04", events[2].End.Effective())

	limited := upcoming(objectsOf(cals...), now, now.Add(DefaultHorizon), 2, testLink)
	require.Len(t, limited, 2)
	assert.Equal(t, "utc", limited[1].ID)
}

func TestUpcoming_Links(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	objects := objectsOf(
		decode(t,
			"BEGIN:VEVENT",
			"UID:plain",
			"SUMMARY:Plain",
			"DTSTART:20240501T100000Z",
			"DTEND:20240501T110000Z",
			"END:VEVENT",
		),
		decode(t,
			"BEGIN:VEVENT",
			"UID:linked",
			"SUMMARY:Linked",
			"URL:https://meet.example.com/x",
			"DTSTART:20240501T120000Z",
			"DTEND:20240501T130000Z",
			"END:VEVENT",
		),
	)
	objects = append(objects, caldav.CalendarObject{Path: "/cal/empty.ics"})

	events := upcoming(objects, now, now.Add(DefaultHorizon), 10, testLink)
	require.Len(t, events, 2)
	assert.Equal(t, "https://dav.example.com/cal/0.ics", events[0].HTMLLink)
	assert.Equal(t, "https://meet.example.com/x", events[1].HTMLLink)
}

func TestUpcoming_ExpandsRecurringEvents(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	cal := decode(t,
		"BEGIN:VEVENT",
		"UID:standup",
		"SUMMARY:Standup",
		"DTSTART;TZID=Europe/Oslo:20240506T090000",
		"DTEND;TZID=Europe/Oslo:20240506T100000",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:standup",
		"SUMMARY:Standup moved",
		"RECURRENCE-ID;TZID=Europe/Oslo:20240513T090000",
		"DTSTART;TZID=Europe/Oslo:20240513T140000",
		"DTEND;TZID=Europe/Oslo:20240513T150000",
		"END:VEVENT",
	)

	events := upcoming(objectsOf(cal), now, now.Add(DefaultHorizon), 10, testLink)

	var got []string
	for _, e := range events {
		got = append(got, e.Summary+"@"+e.Start.DateTime)
	}
	assert.Equal(t, []string{
		"Standup moved@2024-05-13T14:00:00",
		"Standup@2024-05-20T09:00:00",
		"Standup@2024-05-27T09:00:00",
	}, got)
	assert.Equal(t, "2024-05-20T10:00:00", events[1].End.DateTime)
}

func TestUpcoming_KeepsRunningEvent(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	cal := decode(t,
		"BEGIN:VEVENT",
		"UID:running",
		"SUMMARY:Workshop",
		"DTSTART:20240501T090000Z",
		"DTEND:20240501T110000Z",
		"END:VEVENT",
	)

	events := upcoming(objectsOf(cal), now, now.Add(time.Hour), 10, testLink)
	require.Len(t, events, 1)
	assert.Equal(t, "Workshop", events[0].Label())
}

func TestBuildCalendar(t *testing.T) {
	event := calendar.Event{
		Summary:     "Review",
		Description: "Quarterly",
		Location:    "Room 1",
		Start:       calendar.TimeSpec{DateTime: "2024-05-01T09:30:00", TimeZone: "Europe/Oslo"},
		End:         calendar.TimeSpec{DateTime: "2024-05-01T10:00:00", TimeZone: "Europe/Oslo"},
	}

	cal := buildCalendar("uid-1", event, time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, ical.NewEncoder(&buf).Encode(cal))
	out := buf.String()

	assert.Contains(t, out, "UID:uid-1")
	assert.Contains(t, out, "SUMMARY:Review")
	assert.Contains(t, out, "LOCATION:Room 1")
	assert.Contains(t, out, "DESCRIPTION:Quarterly")
	assert.Contains(t, out, "DTSTART;TZID=Europe/Oslo:20240501T093000")
	assert.Contains(t, out, "DTEND;TZID=Europe/Oslo:20240501T100000")
	assert.Contains(t, out, "DTSTAMP:20240430T120000Z")
}

func TestWallClockProp(t *testing.T) {
	tests := []struct {
		name      string
		spec      calendar.TimeSpec
		wantValue string
		wantTZID  string
	}{
		{"zone", calendar.TimeSpec{DateTime: "2024-05-01T09:30:00", TimeZone: "Europe/Oslo"}, "20240501T093000", "Europe/Oslo"},
		{"utc", calendar.TimeSpec{DateTime: "2024-05-01T09:30:00", TimeZone: "UTC"}, "20240501T093000Z", ""},
		{"floating", calendar.TimeSpec{DateTime: "2024-05-01T09:30:00"}, "20240501T093000", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop := wallClockProp(ical.PropDateTimeStart, tt.spec)
			assert.Equal(t, tt.wantValue, prop.Value)
			assert.Equal(t, tt.wantTZID, prop.Params.Get(ical.ParamTimezoneID))
		})
	}
}
