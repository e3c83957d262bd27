package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the scopes requested at login. Reading the
// calendar list and inserting events both need full calendar access.
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
}
