package caldav

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"github.com/teemow/calimport/internal/calendar"
)

// DefaultHorizon bounds the time-range query for upcoming events.
const DefaultHorizon = 365 * 24 * time.Hour

const productID = "-//calimport//EN"

// Client is a CalDAV calendar.Gateway.
type Client struct {
	dav      *caldav.Client
	endpoint *url.URL
	horizon  time.Duration
	now      func() time.Time
	newUID   func() string
}

var (
	_ calendar.Gateway = (*Client)(nil)
	_ calendar.Lister  = (*Client)(nil)
)

// NewClient connects to the CalDAV server at endpoint. Basic auth is used
// when username is set. A nil httpClient means http.DefaultClient.
func NewClient(endpoint, username, password string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid CalDAV server URL %q", endpoint)
	}

	var hc webdav.HTTPClient = http.DefaultClient
	if httpClient != nil {
		hc = httpClient
	}
	if username != "" {
		hc = webdav.HTTPClientWithBasicAuth(hc, username, password)
	}

	dav, err := caldav.NewClient(hc, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}

	return &Client{
		dav:      dav,
		endpoint: u,
		horizon:  DefaultHorizon,
		now:      time.Now,
		newUID:   uuid.NewString,
	}, nil
}

// homeSet returns the calendar home set of the current user. Servers that
// do not support principal discovery get the endpoint path itself.
func (c *Client) homeSet(ctx context.Context) string {
	principal, err := c.dav.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return c.endpoint.Path
	}
	home, err := c.dav.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return c.endpoint.Path
	}
	return home
}

// ListCalendars lists the calendars in the user's home set. The calendar
// path is used as ID.
func (c *Client) ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error) {
	cals, err := c.dav.FindCalendars(ctx, c.homeSet(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	infos := make([]calendar.CalendarInfo, 0, len(cals))
	for _, cal := range cals {
		infos = append(infos, calendar.CalendarInfo{
			ID:          cal.Path,
			Summary:     cal.Name,
			Description: cal.Description,
		})
	}
	return infos, nil
}

// ResolveCalendarID returns the path of the first calendar whose display
// name equals name.
func (c *Client) ResolveCalendarID(ctx context.Context, name string) (string, bool, error) {
	cals, err := c.ListCalendars(ctx)
	if err != nil {
		return "", false, err
	}
	for _, cal := range cals {
		if cal.Summary == name {
			return cal.ID, true, nil
		}
	}
	return "", false, nil
}

// ListUpcoming returns events that have not ended yet, within the query
// horizon, sorted by start and truncated to limit.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, limit int) ([]calendar.ExistingEvent, error) {
	now := c.now()
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: now,
				End:   now.Add(c.horizon),
			}},
		},
	}

	objects, err := c.dav.QueryCalendar(ctx, calendarID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return upcoming(objects, now, now.Add(c.horizon), limit, c.objectURL), nil
}

// Insert writes the event as a new calendar object.
func (c *Client) Insert(ctx context.Context, calendarID string, event calendar.Event) (*calendar.InsertedEvent, error) {
	uid := c.newUID()
	cal := buildCalendar(uid, event, c.now())

	objectPath := path.Join(calendarID, uid+".ics")
	obj, err := c.dav.PutCalendarObject(ctx, objectPath, cal)
	if err != nil {
		return nil, &calendar.InsertError{Summary: event.Summary, Cause: err}
	}
	if obj != nil && obj.Path != "" {
		objectPath = obj.Path
	}

	return &calendar.InsertedEvent{
		ID:       uid,
		HTMLLink: c.objectURL(objectPath),
	}, nil
}

// objectURL turns a server path into an absolute URL.
func (c *Client) objectURL(p string) string {
	if p == "" {
		return ""
	}
	ref := &url.URL{Path: p}
	if !strings.HasPrefix(p, "/") {
		ref.Path = path.Join(c.endpoint.Path, p)
	}
	return c.endpoint.ResolveReference(ref).String()
}
