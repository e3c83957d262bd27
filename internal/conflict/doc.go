// Package conflict decides whether a candidate event overlaps events that
// are already in the calendar.
//
// Intervals are half-open: an event ending at 10:00 and one starting at
// 10:00 do not overlap. Bounds are compared as strings. That is correct for
// timestamps written in the same format, zone and precision, which holds for
// events built by this program and for most service responses. Comparing a
// date-only bound ("2024-05-01") with a date-time bound ("2024-05-01T09:00:00")
// only works as far as the shared prefix sorts; such mixed comparisons are a
// known limitation and are not normalised here.
package conflict
