// Package caldav implements calendar.Gateway against a CalDAV server.
//
// Calendars are resolved by display name within the current user's
// calendar home set. Upcoming events are fetched with a time-range query,
// recurring events are expanded locally into occurrences, and the result is
// sorted and truncated here because CalDAV has no server-side ordering or
// limit. New events are written as one calendar object per event with a
// generated UID.
package caldav
