package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/conflict"
)

// fakeGateway behaves like a tiny calendar: inserted events show up in
// later ListUpcoming calls.
type fakeGateway struct {
	mu        sync.Mutex
	existing  []calendar.ExistingEvent
	failFor   map[string]error // insert failures by summary
	listErr   error
	listCalls int
	limits    []int
	inserted  []calendar.Event
}

func (g *fakeGateway) ResolveCalendarID(_ context.Context, name string) (string, bool, error) {
	return "cal-" + name, true, nil
}

func (g *fakeGateway) ListUpcoming(_ context.Context, _ string, limit int) ([]calendar.ExistingEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	g.limits = append(g.limits, limit)
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := append([]calendar.ExistingEvent(nil), g.existing...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (g *fakeGateway) Insert(_ context.Context, _ string, event calendar.Event) (*calendar.InsertedEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failFor[event.Summary]; err != nil {
		return nil, &calendar.InsertError{Summary: event.Summary, Cause: err}
	}
	id := fmt.Sprintf("evt-%d", len(g.inserted)+1)
	g.inserted = append(g.inserted, event)
	g.existing = append(g.existing, calendar.ExistingEvent{
		ID:      id,
		Summary: event.Summary,
		Start:   calendar.EventTime{DateTime: event.Start.DateTime},
		End:     calendar.EventTime{DateTime: event.End.DateTime},
	})
	return &calendar.InsertedEvent{ID: id, HTMLLink: "https://calendar/" + id}, nil
}

func (g *fakeGateway) insertedSummaries() []string {
	var out []string
	for _, e := range g.inserted {
		out = append(out, e.Summary)
	}
	return out
}

// recordingReporter keeps every callback in order.
type recordingReporter struct {
	lines    []string
	finished *Result
}

func (r *recordingReporter) EventCreated(c calendar.Event, ins *calendar.InsertedEvent) {
	r.lines = append(r.lines, "created "+c.Summary+" "+ins.HTMLLink)
}

func (r *recordingReporter) EventSkipped(c calendar.Event, conflicts conflict.Set) {
	r.lines = append(r.lines, fmt.Sprintf("skipped %s (%d)", c.Summary, len(conflicts)))
}

func (r *recordingReporter) EventFailed(c calendar.Event, err error) {
	var insertErr *calendar.InsertError
	kind := "other"
	if errors.As(err, &insertErr) {
		kind = "insert"
	}
	r.lines = append(r.lines, "failed "+c.Summary+" "+kind)
}

func (r *recordingReporter) ImportFinished(result Result) {
	r.finished = &result
}

// scriptedDecider answers per candidate summary; unknown summaries decline.
type scriptedDecider struct {
	answers map[string]bool
	errs    map[string]error
	asked   []string
}

func (d *scriptedDecider) ConfirmConflict(_ context.Context, c calendar.Event, _ conflict.Set) (bool, error) {
	d.asked = append(d.asked, c.Summary)
	if err := d.errs[c.Summary]; err != nil {
		return false, err
	}
	return d.answers[c.Summary], nil
}

// scriptedPrompter returns answers in order.
type scriptedPrompter struct {
	answers []string
	labels  []string
	err     error
}

func (p *scriptedPrompter) PromptField(_ context.Context, label string) (string, error) {
	p.labels = append(p.labels, label)
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", errors.New("no more answers")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func event(summary, start, end string) calendar.Event {
	return calendar.Event{
		Summary: summary,
		Start:   calendar.TimeSpec{DateTime: start, TimeZone: "Europe/Oslo"},
		End:     calendar.TimeSpec{DateTime: end, TimeZone: "Europe/Oslo"},
	}
}

// hourly returns n back-to-back one hour candidates on 2024-06-03.
func hourly(n int) []calendar.Event {
	out := make([]calendar.Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, event(
			fmt.Sprintf("c%d", i+1),
			fmt.Sprintf("2024-06-03T%02d:00:00", 8+i),
			fmt.Sprintf("2024-06-03T%02d:00:00", 9+i),
		))
	}
	return out
}
