package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/schedule"
	"github.com/teemow/calimport/internal/server"
	"github.com/teemow/calimport/internal/source"
)

type importOptions struct {
	file        string
	onConflict  string
	schedule    string
	runNow      bool
	metricsAddr string
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	flags := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import events from a CSV, YAML or ICS file",
		Long: `Import events from a file. The format follows the extension:

  .csv         columns summary, description, start_datetime, start_timezone,
               end_datetime, end_timezone and optionally location
  .yaml, .yml  a list of events with summary, start, end and optional
               description, location and time_zone
  .ics         VEVENTs with DTSTART and DTEND (no recurring or all-day events)

Events are processed one at a time. Each one is checked against the upcoming
events of the calendar; how overlaps are handled is set by --on-conflict.
Malformed records are listed and skipped. Failed events do not stop the run.

With --schedule the import is repeated on a cron schedule until interrupted.
Scheduled runs need --on-conflict skip or insert.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.schedule != "" {
				return runScheduledImport(cmd, opts, flags)
			}
			return runImport(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "File to import (default: batch_file from config)")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", importer.PolicyAsk, "What to do with overlapping events: ask, skip or insert")
	cmd.Flags().StringVar(&flags.schedule, "schedule", "", "Repeat the import on a cron schedule, e.g. '0 6 * * *' or '@every 1h'")
	cmd.Flags().BoolVar(&flags.runNow, "run-now", false, "With --schedule, also run once immediately")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "With --schedule, serve Prometheus metrics and health probes on this address (e.g. ':9090')")

	return cmd
}

func (o *importOptions) path(s *session) (string, error) {
	if o.file != "" {
		return o.file, nil
	}
	if s.cfg.BatchFile != "" {
		return s.cfg.BatchFile, nil
	}
	return "", errors.New("no file to import: pass --file or set batch_file")
}

func runImport(cmd *cobra.Command, opts *rootOptions, flags *importOptions) error {
	var decider importer.Decider
	if flags.onConflict != importer.PolicyAsk {
		var err error
		if decider, err = importer.NonInteractive(flags.onConflict); err != nil {
			return err
		}
	}

	return opts.withSession(cmd, instrumentation.DefaultConfig(), func(ctx context.Context, s *session, calendarID string) error {
		path, err := flags.path(s)
		if err != nil {
			return err
		}
		if decider == nil {
			decider = s.console
		}

		batch, err := source.Load(path, source.Options{DefaultTimeZone: s.cfg.TimeZone})
		if err != nil {
			return err
		}
		s.console.ReportRejected(batch.Rejected)

		im := importer.New(s.gateway, decider, s.console, s.importerOptions()...)
		result, err := im.ImportAll(ctx, calendarID, batch.Events)
		if err != nil {
			return err
		}
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d events failed", result.Failed, result.Total())
		}
		return nil
	})
}

func runScheduledImport(cmd *cobra.Command, opts *rootOptions, flags *importOptions) error {
	decider, err := importer.NonInteractive(flags.onConflict)
	if err != nil {
		return fmt.Errorf("scheduled import: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cmd.SetContext(ctx)

	instrConfig := instrumentation.DefaultConfig()
	if flags.metricsAddr != "" {
		instrConfig.Enabled = true
		instrConfig.MetricsExporter = instrumentation.ExporterPrometheus
	}

	return opts.withSession(cmd, instrConfig, func(ctx context.Context, s *session, calendarID string) error {
		path, err := flags.path(s)
		if err != nil {
			return err
		}

		health := server.NewHealthChecker()
		if flags.metricsAddr != "" {
			metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
				Addr:                    flags.metricsAddr,
				InstrumentationProvider: s.provider,
				Health:                  health,
				Logger:                  s.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create metrics server: %w", err)
			}
			ln, err := metricsServer.Listen()
			if err != nil {
				return fmt.Errorf("metrics server failed to start: %w", err)
			}
			s.logger.Info("metrics endpoint ready", slog.String("addr", metricsServer.Addr()), slog.String("listen", ln.Addr().String()))
			go func() {
				if err := metricsServer.Serve(ln); err != nil {
					s.logger.Error("metrics server failed", logging.Err(err))
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), server.DefaultShutdownTimeout)
				defer cancel()
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					s.logger.Warn("error shutting down metrics server", logging.Err(err))
				}
			}()
		}

		im := importer.New(s.gateway, decider, s.console, s.importerOptions()...)
		importJob := schedule.ImportJob(im, calendarID, path, source.Options{DefaultTimeZone: s.cfg.TimeZone}, s.logger)
		job := func(ctx context.Context) error {
			err := importJob(ctx)
			health.RecordRun(time.Now(), err)
			return err
		}

		runner, err := schedule.New(flags.schedule, job, s.logger)
		if err != nil {
			return err
		}
		s.logger.Info("scheduled import",
			slog.String("path", path),
			slog.String("on_conflict", flags.onConflict),
			slog.Time("next", runner.Next(time.Now())),
		)
		return runner.Run(ctx, flags.runNow)
	})
}
