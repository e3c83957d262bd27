package calendar

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// Gateway is the capability the rest of the application needs from a
// calendar service.
type Gateway interface {
	// ResolveCalendarID looks up a calendar by display name among all
	// calendars visible to the authenticated identity. The first exact match
	// wins. found is false when nothing matches; that is not an error.
	ResolveCalendarID(ctx context.Context, name string) (id string, found bool, err error)

	// ListUpcoming returns events that have not ended yet, ascending by start
	// time and truncated to limit. Recurring events arrive as individual
	// occurrences.
	ListUpcoming(ctx context.Context, calendarID string, limit int) ([]ExistingEvent, error)

	// Insert persists one event. Service-level failures are returned as
	// *InsertError.
	Insert(ctx context.Context, calendarID string, event Event) (*InsertedEvent, error)
}

// InsertError is returned when the service rejects an insert.
type InsertError struct {
	Summary string
	Cause   error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("failed to create event %q: %s", e.Summary, Reason(e.Cause))
}

func (e *InsertError) Unwrap() error {
	return e.Cause
}

// Reason returns a human-readable cause for err. Google API errors are
// reduced to their status code and message.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Sprintf("%s (HTTP %d)", apiErr.Message, apiErr.Code)
		}
		return fmt.Sprintf("HTTP %d", apiErr.Code)
	}
	return err.Error()
}
