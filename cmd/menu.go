package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/instrumentation"
)

func newMenuCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Long: `Start the interactive menu:

  1. Add manual event
  2. Import events from file
  3. Print upcoming events
  0. Exit

Errors from an action are printed and the menu is shown again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, instrumentation.DefaultConfig(), func(ctx context.Context, s *session, calendarID string) error {
				return s.app(calendarID).Run(ctx)
			})
		},
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add one event from prompts",
		Long: `Ask for name, date, start time, end time, location and description, then
create the event. If it overlaps upcoming events you are asked to confirm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, instrumentation.DefaultConfig(), func(ctx context.Context, s *session, calendarID string) error {
				return s.app(calendarID).AddEvent(ctx)
			})
		},
	}
}

func newUpcomingCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Print upcoming events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must not be negative")
			}
			return opts.withSession(cmd, instrumentation.DefaultConfig(), func(ctx context.Context, s *session, calendarID string) error {
				n := limit
				if n == 0 {
					n = s.cfg.Lookahead
				}
				return s.app(calendarID).ShowUpcoming(ctx, n)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of events to show (default: lookahead from config)")

	return cmd
}

func newCalendarsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List calendars visible to the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.openSession(ctx, cmd, instrumentation.DefaultConfig())
			if err != nil {
				return err
			}
			defer s.Close(context.WithoutCancel(ctx))

			cals, err := s.gateway.ListCalendars(ctx)
			if err != nil {
				return err
			}
			s.console.PrintCalendars(cals)
			return nil
		},
	}
}
