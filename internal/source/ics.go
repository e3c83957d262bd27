package source

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/teemow/calimport/internal/calendar"
)

const (
	icsLocalLayout = "20060102T150405"
	icsUTCLayout   = "20060102T150405Z"
)

// ReadICS reads VEVENTs. All-day and recurring events are rejected: the
// importer works on single timed occurrences only.
func ReadICS(r io.Reader, opts Options) (*Batch, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("invalid iCalendar data: %w", err)
	}

	batch := &Batch{}
	for i, ve := range cal.Events() {
		position := i + 1
		summary := propValue(ve, ical.ComponentPropertySummary)

		if ve.GetProperty(ical.ComponentPropertyRrule) != nil {
			batch.reject("event", position, summary, "recurring events are not supported")
			continue
		}

		dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
		if dtStart == nil {
			batch.reject("event", position, summary, "missing DTSTART")
			continue
		}
		if isAllDay(dtStart) {
			batch.reject("event", position, summary, "all-day events are not supported")
			continue
		}
		dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd)
		if dtEnd == nil {
			batch.reject("event", position, summary, "missing DTEND")
			continue
		}

		start, err := icsTime(dtStart)
		if err != nil {
			batch.reject("event", position, summary, "start: "+err.Error())
			continue
		}
		end, err := icsTime(dtEnd)
		if err != nil {
			batch.reject("event", position, summary, "end: "+err.Error())
			continue
		}

		event, reason := normalize(calendar.Event{
			Summary:     summary,
			Description: propValue(ve, ical.ComponentPropertyDescription),
			Location:    propValue(ve, ical.ComponentPropertyLocation),
			Start:       start,
			End:         end,
		}, opts)
		if reason != "" {
			batch.reject("event", position, summary, reason)
			continue
		}
		batch.accept(event)
	}
	return batch, nil
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

func param(p *ical.IANAProperty, name string) string {
	if p.ICalParameters == nil {
		return ""
	}
	if vs := p.ICalParameters[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func isAllDay(p *ical.IANAProperty) bool {
	return strings.EqualFold(param(p, "VALUE"), "DATE") || !strings.Contains(p.Value, "T")
}

// icsTime converts a DATE-TIME property into a local timestamp and zone.
// UTC values keep their wall clock with zone UTC; TZID is carried over;
// floating values get no zone and pick up the default later.
func icsTime(p *ical.IANAProperty) (calendar.TimeSpec, error) {
	v := strings.TrimSpace(p.Value)
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(icsUTCLayout, v)
		if err != nil {
			return calendar.TimeSpec{}, fmt.Errorf("invalid date-time %q", v)
		}
		return calendar.TimeSpec{DateTime: t.Format(LocalLayout), TimeZone: "UTC"}, nil
	}

	t, err := time.Parse(icsLocalLayout, v)
	if err != nil {
		return calendar.TimeSpec{}, fmt.Errorf("invalid date-time %q", v)
	}
	return calendar.TimeSpec{DateTime: t.Format(LocalLayout), TimeZone: param(p, "TZID")}, nil
}
