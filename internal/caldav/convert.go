package caldav

import (
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/teambition/rrule-go"

	"github.com/teemow/calimport/internal/calendar"
)

const (
	dateLayout  = "2006-01-02"
	localLayout = "2006-01-02T15:04:05"
)

// timeKind is how a DTSTART is written, and how bounds derived from it are
// rendered back as strings.
type timeKind int

const (
	kindLocal timeKind = iota // TZID or floating: local wall clock, no offset
	kindUTC                   // trailing Z: RFC 3339 in UTC
	kindDate                  // VALUE=DATE: date only
)

func kindOf(prop *ical.Prop) timeKind {
	switch {
	case prop.ValueType() == ical.ValueDate || !strings.Contains(prop.Value, "T"):
		return kindDate
	case strings.HasSuffix(prop.Value, "Z"):
		return kindUTC
	default:
		return kindLocal
	}
}

func render(t time.Time, kind timeKind, tzid string) calendar.EventTime {
	switch kind {
	case kindDate:
		return calendar.EventTime{Date: t.Format(dateLayout)}
	case kindUTC:
		return calendar.EventTime{DateTime: t.UTC().Format(time.RFC3339), TimeZone: "UTC"}
	default:
		return calendar.EventTime{DateTime: t.Format(localLayout), TimeZone: tzid}
	}
}

type occurrence struct {
	start time.Time
	event calendar.ExistingEvent
}

// upcoming flattens calendar objects into occurrences that end after from
// and start before to, sorted by start. Events without a URL property link
// to their object through link.
func upcoming(objects []caldav.CalendarObject, from, to time.Time, limit int, link func(string) string) []calendar.ExistingEvent {
	// RECURRENCE-ID overrides replace the generated occurrence they name.
	overridden := make(map[string]map[int64]bool)
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, ev := range obj.Data.Events() {
			rid := ev.Props.Get(ical.PropRecurrenceID)
			if rid == nil {
				continue
			}
			t, err := rid.DateTime(time.UTC)
			if err != nil {
				continue
			}
			uid, _ := ev.Props.Text(ical.PropUID)
			if overridden[uid] == nil {
				overridden[uid] = make(map[int64]bool)
			}
			overridden[uid][t.Unix()] = true
		}
	}

	var occs []occurrence
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		objectLink := link(obj.Path)
		for _, ev := range obj.Data.Events() {
			occs = append(occs, expand(ev, from, to, overridden, objectLink)...)
		}
	}

	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].start.Before(occs[j].start)
	})

	out := make([]calendar.ExistingEvent, 0, len(occs))
	for _, o := range occs {
		out = append(out, o.event)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func expand(ev ical.Event, from, to time.Time, overridden map[string]map[int64]bool, link string) []occurrence {
	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return nil
	}
	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return nil
	}
	end, err := ev.DateTimeEnd(time.UTC)
	if err != nil || end.Before(start) {
		end = start
	}
	duration := end.Sub(start)

	kind := kindOf(startProp)
	tzid := startProp.Params.Get(ical.ParamTimezoneID)

	uid, _ := ev.Props.Text(ical.PropUID)
	base := calendar.ExistingEvent{ID: uid}
	base.Summary, _ = ev.Props.Text(ical.PropSummary)
	base.Description, _ = ev.Props.Text(ical.PropDescription)
	base.Location, _ = ev.Props.Text(ical.PropLocation)
	base.HTMLLink = link
	if u := ev.Props.Get(ical.PropURL); u != nil && u.Value != "" {
		base.HTMLLink = u.Value
	}

	starts := []time.Time{start}
	isMaster := ev.Props.Get(ical.PropRecurrenceRule) != nil && ev.Props.Get(ical.PropRecurrenceID) == nil
	if isMaster {
		var set *rrule.Set
		set, err = ev.RecurrenceSet(time.UTC)
		if err == nil && set != nil {
			// Occurrences that started before from may still be running.
			starts = set.Between(from.Add(-duration), to, true)
		}
	}

	var out []occurrence
	for _, s := range starts {
		e := s.Add(duration)
		if !e.After(from) && s.Before(from) {
			continue
		}
		if !s.Before(to) {
			continue
		}
		if isMaster && overridden[uid][s.Unix()] {
			continue
		}
		occ := base
		occ.Start = render(s, kind, tzid)
		occ.End = render(e, kind, tzid)
		out = append(out, occurrence{start: s, event: occ})
	}
	return out
}

// buildCalendar wraps one candidate event into a VCALENDAR. Wall-clock
// timestamps are written as-is with a TZID parameter; zone UTC is written
// in UTC form.
func buildCalendar(uid string, event calendar.Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ev.Props.SetText(ical.PropSummary, event.Summary)
	if event.Description != "" {
		ev.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ev.Props.SetText(ical.PropLocation, event.Location)
	}
	ev.Props.Set(wallClockProp(ical.PropDateTimeStart, event.Start))
	ev.Props.Set(wallClockProp(ical.PropDateTimeEnd, event.End))

	cal.Children = append(cal.Children, ev.Component)
	return cal
}

var basicFormat = strings.NewReplacer("-", "", ":", "")

func wallClockProp(name string, ts calendar.TimeSpec) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = basicFormat.Replace(ts.DateTime)
	switch ts.TimeZone {
	case "":
	case "UTC", "Etc/UTC":
		prop.Value += "Z"
	default:
		prop.Params.Set(ical.ParamTimezoneID, ts.TimeZone)
	}
	return prop
}
