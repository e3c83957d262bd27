package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/source"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Runner triggers a Job on a cron schedule.
type Runner struct {
	spec     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger
	adapter  *logging.SlogAdapter

	mu      sync.Mutex
	ctx     context.Context
	wrapped cron.Job
}

// New parses spec (standard five-field cron or a descriptor such as
// "@hourly" or "@every 15m") and prepares a Runner for job.
func New(spec string, job Job, logger *slog.Logger) (*Runner, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "schedule")
	adapter := logging.NewSlogAdapter(logger)

	r := &Runner{
		spec:     spec,
		schedule: sched,
		job:      job,
		logger:   logger,
		adapter:  adapter,
		ctx:      context.Background(),
	}
	r.wrapped = cron.NewChain(
		cron.Recover(adapter),
		cron.SkipIfStillRunning(adapter),
	).Then(cron.FuncJob(r.runOnce))
	return r, nil
}

// Next returns the first activation after t.
func (r *Runner) Next(t time.Time) time.Time {
	return r.schedule.Next(t)
}

func (r *Runner) runOnce() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	r.logger.Info("scheduled run started")
	if err := r.job(ctx); err != nil {
		r.logger.Error("scheduled run failed", logging.Err(err), logging.Duration(time.Since(started)))
		return
	}
	r.logger.Info("scheduled run finished", logging.Duration(time.Since(started)))
}

// Run starts the schedule and blocks until ctx is done. A run in progress
// is allowed to finish before Run returns. With runNow the job also runs
// once immediately.
func (r *Runner) Run(ctx context.Context, runNow bool) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	c := cron.New(cron.WithLogger(r.adapter))
	c.Schedule(r.schedule, r.wrapped)
	c.Start()
	r.logger.Info("schedule started", slog.String("schedule", r.spec), slog.Time("next", r.Next(time.Now())))

	var immediate sync.WaitGroup
	if runNow {
		immediate.Add(1)
		go func() {
			defer immediate.Done()
			r.wrapped.Run()
		}()
	}

	<-ctx.Done()
	<-c.Stop().Done()
	immediate.Wait()
	r.logger.Info("schedule stopped")
	return nil
}

// ImportJob reloads path on every run and imports its events. Rejected
// records are logged.
func ImportJob(im *importer.Importer, calendarID, path string, opts source.Options, logger *slog.Logger) Job {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) error {
		batch, err := source.Load(path, opts)
		if err != nil {
			return err
		}
		for _, rejected := range batch.Rejected {
			logger.Warn("record rejected", slog.String("path", path), logging.Err(rejected))
		}

		result, err := im.ImportAll(ctx, calendarID, batch.Events)
		if err != nil {
			return err
		}
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d events failed", result.Failed, result.Total())
		}
		return nil
	}
}
