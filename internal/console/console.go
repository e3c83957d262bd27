package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/conflict"
	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/source"
)

type styles struct {
	heading lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Console is a line-oriented terminal.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	styles styles
}

var (
	_ importer.Decider       = (*Console)(nil)
	_ importer.Reporter      = (*Console)(nil)
	_ importer.FieldPrompter = (*Console)(nil)
)

// New creates a Console. Styling is only emitted when out is a terminal.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// ReadLine prints prompt and returns the next line without its line ending.
// A final line without newline is returned before io.EOF.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptField implements importer.FieldPrompter.
func (c *Console) PromptField(ctx context.Context, label string) (string, error) {
	return c.ReadLine(ctx, label+": ")
}

// ConfirmConflict lists the overlapping events and asks whether to create
// the candidate anyway. Only y or yes confirms.
func (c *Console) ConfirmConflict(ctx context.Context, candidate calendar.Event, conflicts conflict.Set) (bool, error) {
	fmt.Fprintln(c.out, c.styles.warning.Render(
		fmt.Sprintf("Conflict: %q overlaps with existing events:", candidate.Summary)))
	for _, ev := range conflicts {
		fmt.Fprintf(c.out, "  - %s (%s)\n", ev.Label(), ev.Start.Effective())
	}

	answer, err := c.ReadLine(ctx, "Create the event anyway? (y/N): ")
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// EventCreated implements importer.Reporter. The event link is shown when
// the service returned one.
func (c *Console) EventCreated(candidate calendar.Event, inserted *calendar.InsertedEvent) {
	msg := "Event created."
	switch {
	case inserted != nil && inserted.HTMLLink != "":
		msg = "Event created: " + inserted.HTMLLink
	case candidate.Summary != "":
		msg = fmt.Sprintf("Event created: %s", candidate.Summary)
	}
	fmt.Fprintln(c.out, c.styles.success.Render(msg))
}

// EventSkipped implements importer.Reporter.
func (c *Console) EventSkipped(candidate calendar.Event, _ conflict.Set) {
	fmt.Fprintln(c.out, c.styles.muted.Render(fmt.Sprintf("Skipped %q.", candidate.Summary)))
}

// EventFailed implements importer.Reporter.
func (c *Console) EventFailed(candidate calendar.Event, err error) {
	var insertErr *calendar.InsertError
	if errors.As(err, &insertErr) {
		fmt.Fprintln(c.out, c.styles.failure.Render(insertErr.Error()))
		return
	}
	fmt.Fprintln(c.out, c.styles.failure.Render(fmt.Sprintf("Could not create %q: %v", candidate.Summary, err)))
}

// ImportFinished implements importer.Reporter.
func (c *Console) ImportFinished(result importer.Result) {
	fmt.Fprintln(c.out, c.styles.heading.Render(fmt.Sprintf("%d events created.", result.Created)))
	if result.Skipped > 0 || result.Failed > 0 {
		fmt.Fprintf(c.out, "%d skipped, %d failed.\n", result.Skipped, result.Failed)
	}
}

// PrintUpcoming renders events as one line each: start, end, title and
// location.
func (c *Console) PrintUpcoming(events []calendar.ExistingEvent) {
	fmt.Fprintln(c.out, c.styles.heading.Render("Upcoming events"))
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No upcoming events found.")
		return
	}
	for _, ev := range events {
		line := fmt.Sprintf("%s - %s  %s", ev.Start.Effective(), ev.End.Effective(), ev.Label())
		if ev.Location != "" {
			line += c.styles.muted.Render(" @ " + ev.Location)
		}
		fmt.Fprintln(c.out, line)
	}
}

// PrintCalendars renders calendar names and IDs.
func (c *Console) PrintCalendars(cals []calendar.CalendarInfo) {
	fmt.Fprintln(c.out, c.styles.heading.Render("Calendars"))
	for _, cal := range cals {
		line := cal.Summary
		if cal.Primary {
			line += " (primary)"
		}
		fmt.Fprintf(c.out, "%s  %s\n", line, c.styles.muted.Render(cal.ID))
	}
}

// ReportRejected lists records that were not imported because they were
// malformed.
func (c *Console) ReportRejected(rejected []source.RecordError) {
	if len(rejected) == 0 {
		return
	}
	fmt.Fprintln(c.out, c.styles.warning.Render(fmt.Sprintf("%d records could not be read:", len(rejected))))
	for _, r := range rejected {
		fmt.Fprintf(c.out, "  - %s\n", r.Error())
	}
}

// Println writes an informational line.
func (c *Console) Println(msg string) {
	fmt.Fprintln(c.out, msg)
}

// PrintError renders err for the operator.
func (c *Console) PrintError(err error) {
	fmt.Fprintln(c.out, c.styles.failure.Render("Error: "+err.Error()))
}
