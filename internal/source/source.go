package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zone validation must not depend on the host zoneinfo

	"github.com/teemow/calimport/internal/calendar"
)

// LocalLayout is the accepted timestamp format: local wall clock, no offset.
const LocalLayout = "2006-01-02T15:04:05"

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported candidate file format")

// Options controls how records are normalised.
type Options struct {
	// DefaultTimeZone is used when a record names no zone.
	DefaultTimeZone string
}

// RecordError describes one rejected record.
type RecordError struct {
	// Unit is "line" for CSV and YAML, "event" for ICS.
	Unit     string
	Position int
	Summary  string
	Reason   string
}

func (e RecordError) Error() string {
	if e.Summary != "" {
		return fmt.Sprintf("%s %d (%q): %s", e.Unit, e.Position, e.Summary, e.Reason)
	}
	return fmt.Sprintf("%s %d: %s", e.Unit, e.Position, e.Reason)
}

// Batch is the outcome of reading one file.
type Batch struct {
	Events   []calendar.Event
	Rejected []RecordError
}

func (b *Batch) accept(event calendar.Event) {
	b.Events = append(b.Events, event)
}

func (b *Batch) reject(unit string, position int, summary, reason string) {
	b.Rejected = append(b.Rejected, RecordError{Unit: unit, Position: position, Summary: summary, Reason: reason})
}

// Load reads the candidate file at path.
func Load(path string, opts Options) (*Batch, error) {
	var read func(io.Reader, Options) (*Batch, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		read = ReadCSV
	case ".yaml", ".yml":
		read = ReadYAML
	case ".ics":
		read = ReadICS
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate file: %w", err)
	}
	defer f.Close()

	batch, err := read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return batch, nil
}

// normalize validates a candidate and fills in default zones. It returns a
// reason string when the record must be rejected.
func normalize(event calendar.Event, opts Options) (calendar.Event, string) {
	event.Summary = strings.TrimSpace(event.Summary)
	if event.Summary == "" {
		return event, "missing summary"
	}

	var err error
	var start, end time.Time
	if event.Start, start, err = normalizeTime(event.Start, opts.DefaultTimeZone); err != nil {
		return event, "start: " + err.Error()
	}
	if event.End, end, err = normalizeTime(event.End, opts.DefaultTimeZone); err != nil {
		return event, "end: " + err.Error()
	}
	if !end.After(start) {
		return event, "end is not after start"
	}
	return event, ""
}

func normalizeTime(ts calendar.TimeSpec, defaultZone string) (calendar.TimeSpec, time.Time, error) {
	ts.DateTime = strings.TrimSpace(ts.DateTime)
	ts.TimeZone = strings.TrimSpace(ts.TimeZone)
	if ts.TimeZone == "" {
		ts.TimeZone = defaultZone
	}
	if ts.DateTime == "" {
		return ts, time.Time{}, errors.New("missing timestamp")
	}
	if ts.TimeZone == "" {
		return ts, time.Time{}, errors.New("missing time zone")
	}

	loc, err := time.LoadLocation(ts.TimeZone)
	if err != nil {
		return ts, time.Time{}, fmt.Errorf("unknown time zone %q", ts.TimeZone)
	}
	t, err := time.ParseInLocation(LocalLayout, ts.DateTime, loc)
	if err != nil {
		return ts, time.Time{}, fmt.Errorf("invalid timestamp %q (want YYYY-MM-DDTHH:MM:SS)", ts.DateTime)
	}
	return ts, t, nil
}
