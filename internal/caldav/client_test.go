package caldav

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calimport/internal/calendar"
)

var review = calendar.Event{
	Summary: "Review",
	Start:   calendar.TimeSpec{DateTime: "2024-05-01T09:30:00", TimeZone: "Europe/Oslo"},
	End:     calendar.TimeSpec{DateTime: "2024-05-01T10:00:00", TimeZone: "Europe/Oslo"},
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/dav/", "alice", "secret", srv.Client())
	require.NoError(t, err)
	c.newUID = func() string { return "uid-1" }
	c.now = func() time.Time { return time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("not a url", "", "", nil)
	assert.Error(t, err)
}

func TestClient_Insert(t *testing.T) {
	var method, path, body, user string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		user, _, _ = r.BasicAuth()
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusCreated)
	})

	inserted, err := c.Insert(t.Context(), "/dav/calendars/alice/work/", review)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/dav/calendars/alice/work/uid-1.ics", path)
	assert.Equal(t, "alice", user)
	assert.Contains(t, body, "SUMMARY:Review")
	assert.Contains(t, body, "DTSTART;TZID=Europe/Oslo:20240501T093000")

	assert.Equal(t, "uid-1", inserted.ID)
	assert.Contains(t, inserted.HTMLLink, "/dav/calendars/alice/work/uid-1.ics")
}

func TestClient_InsertRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	_, err := c.Insert(t.Context(), "/dav/calendars/alice/work/", review)
	require.Error(t, err)

	var insertErr *calendar.InsertError
	require.True(t, errors.As(err, &insertErr))
	assert.Equal(t, "Review", insertErr.Summary)
}

func TestClient_ObjectURL(t *testing.T) {
	c, err := NewClient("https://dav.example.com/dav/", "", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://dav.example.com/dav/cal/a.ics", c.objectURL("/dav/cal/a.ics"))
	assert.Equal(t, "https://dav.example.com/dav/cal/a.ics", c.objectURL("cal/a.ics"))
	assert.Empty(t, c.objectURL(""))
}
