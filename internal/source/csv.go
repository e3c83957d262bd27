package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/teemow/calimport/internal/calendar"
)

// CSV column names.
const (
	ColSummary       = "summary"
	ColDescription   = "description"
	ColLocation      = "location"
	ColStartDateTime = "start_datetime"
	ColStartTimeZone = "start_timezone"
	ColEndDateTime   = "end_datetime"
	ColEndTimeZone   = "end_timezone"
)

var requiredColumns = []string{ColSummary, ColStartDateTime, ColEndDateTime}

// ReadCSV reads candidates from CSV with a header row.
func ReadCSV(r io.Reader, opts Options) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing CSV header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV header is missing column(s): %s", strings.Join(missing, ", "))
	}

	batch := &Batch{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				batch.reject("line", parseErr.StartLine, "", parseErr.Err.Error())
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		field := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		event, reason := normalize(calendar.Event{
			Summary:     field(ColSummary),
			Description: field(ColDescription),
			Location:    field(ColLocation),
			Start:       calendar.TimeSpec{DateTime: field(ColStartDateTime), TimeZone: field(ColStartTimeZone)},
			End:         calendar.TimeSpec{DateTime: field(ColEndDateTime), TimeZone: field(ColEndTimeZone)},
		}, opts)
		if reason != "" {
			batch.reject("line", line, event.Summary, reason)
			continue
		}
		batch.accept(event)
	}

	return batch, nil
}
