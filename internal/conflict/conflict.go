package conflict

import (
	"github.com/teemow/calimport/internal/calendar"
)

// Set is the ordered list of existing events a candidate overlaps.
type Set []calendar.ExistingEvent

// Empty reports whether there are no conflicts.
func (s Set) Empty() bool {
	return len(s) == 0
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// Detect returns the existing events that overlap candidate, in input order.
// Existing bounds fall back from date-time to date.
func Detect(existing []calendar.ExistingEvent, candidate calendar.Event) Set {
	var conflicts Set
	for _, e := range existing {
		if Overlaps(candidate.Start.DateTime, candidate.End.DateTime, e.Start.Effective(), e.End.Effective()) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}
