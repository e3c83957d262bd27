package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/source"
)

// Menu choices.
const (
	ChoiceAdd      = "1"
	ChoiceImport   = "2"
	ChoiceUpcoming = "3"
	ChoiceExit     = "0"
)

const menuText = `
1. Add manual event
2. Import events from file
3. Print upcoming events
0. Exit`

// App is an interactive session against one calendar.
type App struct {
	Console    *Console
	Gateway    calendar.Gateway
	CalendarID string
	TimeZone   string
	BatchFile  string
	Lookahead  int
	Logger     *slog.Logger

	// ImporterOptions are passed to every importer the app creates.
	ImporterOptions []importer.Option
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a *App) importer() *importer.Importer {
	opts := append([]importer.Option{importer.WithLookahead(a.Lookahead)}, a.ImporterOptions...)
	return importer.New(a.Gateway, a.Console, a.Console, opts...)
}

// AddEvent asks for one event and creates it.
func (a *App) AddEvent(ctx context.Context) error {
	builder := importer.NewBuilder(a.importer(), a.Console, a.TimeZone)
	inserted, err := builder.Run(ctx, a.CalendarID)
	switch {
	case errors.Is(err, importer.ErrDeclined):
		a.Console.Println("Event not created.")
		return nil
	case err != nil:
		return err
	}
	a.Console.EventCreated(calendar.Event{}, inserted)
	return nil
}

// ImportFile reads candidates from path and imports them. An empty path
// asks the operator, offering the configured batch file as default.
func (a *App) ImportFile(ctx context.Context, path string) (importer.Result, error) {
	if path == "" {
		var err error
		path, err = a.askPath(ctx)
		if err != nil {
			return importer.Result{}, err
		}
	}

	batch, err := source.Load(path, source.Options{DefaultTimeZone: a.TimeZone})
	if err != nil {
		return importer.Result{}, err
	}
	a.Console.ReportRejected(batch.Rejected)
	logging.WithOperation(a.logger(), "import").Debug("batch loaded",
		slog.String("path", path),
		slog.Int("events", len(batch.Events)),
		slog.Int("rejected", len(batch.Rejected)),
	)

	return a.importer().ImportAll(ctx, a.CalendarID, batch.Events)
}

func (a *App) askPath(ctx context.Context) (string, error) {
	prompt := "File to import: "
	if a.BatchFile != "" {
		prompt = fmt.Sprintf("File to import [%s]: ", a.BatchFile)
	}
	answer, err := a.Console.ReadLine(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = a.BatchFile
	}
	if answer == "" {
		return "", errors.New("no file given")
	}
	return answer, nil
}

// ShowUpcoming prints the next events of the calendar.
func (a *App) ShowUpcoming(ctx context.Context, limit int) error {
	events, err := a.Gateway.ListUpcoming(ctx, a.CalendarID, limit)
	if err != nil {
		return fmt.Errorf("failed to list upcoming events: %w", err)
	}
	a.Console.PrintUpcoming(events)
	return nil
}

// Run shows the menu until the operator exits or input ends. Errors from an
// action are printed and the menu is shown again.
func (a *App) Run(ctx context.Context) error {
	logger := logging.WithOperation(a.logger(), "menu")
	for {
		a.Console.Println(menuText)
		choice, err := a.Console.ReadLine(ctx, "Choose an option: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		var actionErr error
		switch strings.TrimSpace(choice) {
		case ChoiceAdd:
			actionErr = a.AddEvent(ctx)
		case ChoiceImport:
			_, actionErr = a.ImportFile(ctx, "")
		case ChoiceUpcoming:
			actionErr = a.ShowUpcoming(ctx, a.Lookahead)
		case ChoiceExit:
			return nil
		default:
			a.Console.Println("Invalid choice, try again.")
			continue
		}

		if actionErr == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(actionErr, io.EOF) {
			return nil
		}
		logger.Warn("menu action failed", logging.Err(actionErr))
		a.Console.PrintError(actionErr)
	}
}
