package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calimport/internal/google"
)

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	account string // The account this client is associated with
	now     func() time.Time
}

var _ Gateway = (*Client)(nil)

// errStopPaging ends CalendarList paging once a match is found.
var errStopPaging = errors.New("stop paging")

// NewClientForAccount creates a new Calendar client with OAuth2 authentication for a specific account.
// The token is read from store and refreshed tokens are written back to it.
func NewClientForAccount(ctx context.Context, account string, store google.TokenStore, conf *oauth2.Config) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("token store cannot be nil")
	}

	httpClient, err := google.HTTPClient(ctx, conf, store, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client for account %s: %w", account, err)
	}

	return NewClientWithOptions(ctx, account, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Calendar client from raw API client options.
// Tests use it to point the client at a local server.
func NewClientWithOptions(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: account,
		now:     time.Now,
	}, nil
}

// ResolveCalendarID returns the ID of the first calendar whose display name
// equals name.
func (c *Client) ResolveCalendarID(ctx context.Context, name string) (string, bool, error) {
	var id string
	err := c.svc.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, entry := range list.Items {
			if entry.Summary == name {
				id = entry.Id
				return errStopPaging
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopPaging) {
		return "", false, fmt.Errorf("failed to list calendars for account %s: %w", c.account, err)
	}

	return id, id != "", nil
}

// ListUpcoming lists events that end after now, ordered by start time.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, limit int) ([]ExistingEvent, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(c.now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	if limit > 0 {
		call = call.MaxResults(int64(limit))
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events for account %s: %w", c.account, err)
	}

	upcoming := make([]ExistingEvent, 0, len(events.Items))
	for _, event := range events.Items {
		upcoming = append(upcoming, toExistingEvent(event))
	}
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}

	return upcoming, nil
}

// Insert creates a new calendar event
func (c *Client) Insert(ctx context.Context, calendarID string, event Event) (*InsertedEvent, error) {
	created, err := c.svc.Events.Insert(calendarID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return nil, &InsertError{Summary: event.Summary, Cause: err}
	}

	return &InsertedEvent{
		ID:       created.Id,
		HTMLLink: created.HtmlLink,
	}, nil
}

// ListCalendars lists all calendars accessible to the user
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var calendars []CalendarInfo
	err := c.svc.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, entry := range list.Items {
			calendars = append(calendars, toCalendarInfo(entry))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars for account %s: %w", c.account, err)
	}

	return calendars, nil
}
