package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/caldav"
	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/config"
	"github.com/teemow/calimport/internal/console"
	"github.com/teemow/calimport/internal/google"
	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
)

// gatewayFactory builds the calendar backend selected by cfg. The returned
// func releases resources held by the backend.
type gatewayFactory func(ctx context.Context, cfg *config.Config) (calendar.Gateway, func() error, error)

// newGateway is replaced in tests.
var newGateway gatewayFactory = openGateway

// load reads the configuration, applies the persistent flags and builds the
// diagnostic logger. Logs go to stderr.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.calendar != "" {
		cfg.CalendarName = o.calendar
	}
	if o.account != "" {
		cfg.Account = o.account
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(logging.UserHash(cfg.Account))
	if cfg.Path != "" {
		logger.Debug("loaded config", slog.String("path", cfg.Path))
	}
	return cfg, logger, nil
}

// session is everything a calendar command needs.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger
	gateway  *calendar.Instrumented
	console  *console.Console

	closeGateway func() error
}

func (o *rootOptions) openSession(ctx context.Context, cmd *cobra.Command, instr instrumentation.Config) (*session, error) {
	cfg, logger, err := o.load(cmd)
	if err != nil {
		return nil, err
	}

	instr.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instr)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	gw, closeGateway, err := newGateway(ctx, cfg)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	return &session{
		cfg:          cfg,
		logger:       logger,
		provider:     provider,
		audit:        instrumentation.NewAuditLoggerWithConfig(logger, instr.AuditLogging),
		gateway:      calendar.Instrument(gw, cfg.Provider, provider.Metrics(), logger),
		console:      console.New(cmd.InOrStdin(), cmd.OutOrStdout()),
		closeGateway: closeGateway,
	}, nil
}

func (s *session) Close(ctx context.Context) {
	if s.closeGateway != nil {
		if err := s.closeGateway(); err != nil {
			s.logger.Warn("failed to close calendar backend", logging.Err(err))
		}
	}
	if err := s.provider.Shutdown(ctx); err != nil {
		s.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

// calendarID resolves the configured calendar name.
func (s *session) calendarID(ctx context.Context) (string, error) {
	name := s.cfg.CalendarName
	if name == "" {
		return "", fmt.Errorf("no calendar configured: set calendar_name, %s or --calendar", config.EnvCalendar)
	}

	id, found, err := s.gateway.ResolveCalendarID(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to look up calendar %q: %w", name, err)
	}
	if !found {
		return "", fmt.Errorf("calendar %q not found", name)
	}
	s.logger.Debug("resolved calendar", logging.Calendar(name), slog.String("calendar_id", id))
	return id, nil
}

func (s *session) importerOptions() []importer.Option {
	return []importer.Option{
		importer.WithLookahead(s.cfg.Lookahead),
		importer.WithLogger(s.logger),
		importer.WithMetrics(s.provider.Metrics()),
		importer.WithAuditLogger(s.audit),
	}
}

func (s *session) app(calendarID string) *console.App {
	return &console.App{
		Console:         s.console,
		Gateway:         s.gateway,
		CalendarID:      calendarID,
		TimeZone:        s.cfg.TimeZone,
		BatchFile:       s.cfg.BatchFile,
		Lookahead:       s.cfg.Lookahead,
		Logger:          s.logger,
		ImporterOptions: s.importerOptions(),
	}
}

// withSession opens a session with the calendar resolved and runs fn.
func (o *rootOptions) withSession(cmd *cobra.Command, instr instrumentation.Config, fn func(ctx context.Context, s *session, calendarID string) error) error {
	ctx := cmd.Context()
	s, err := o.openSession(ctx, cmd, instr)
	if err != nil {
		return err
	}
	defer s.Close(context.WithoutCancel(ctx))

	id, err := s.calendarID(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, s, id)
}

func openGateway(ctx context.Context, cfg *config.Config) (calendar.Gateway, func() error, error) {
	switch cfg.Provider {
	case config.ProviderCalDAV:
		client, err := caldav.NewClient(cfg.CalDAV.URL, cfg.CalDAV.Username, cfg.CalDAV.Password, nil)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	default:
		conf, err := google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		if err != nil {
			return nil, nil, err
		}
		store, closeStore, err := openTokenStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		client, err := calendar.NewClientForAccount(ctx, cfg.Account, store, conf)
		if err != nil {
			_ = closeStore()
			if errors.Is(err, google.ErrNoToken) {
				return nil, nil, fmt.Errorf("account %s is not authenticated, run 'calimport auth login': %w", cfg.Account, err)
			}
			return nil, nil, err
		}
		return client, closeStore, nil
	}
}

// openTokenStore opens the configured Google token store.
func openTokenStore(ctx context.Context, cfg *config.Config) (google.TokenStore, func() error, error) {
	if cfg.Google.TokenStore == config.TokenStoreSQLite {
		store, err := google.OpenSQLiteTokenProvider(ctx, cfg.TokenDBPath())
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return google.NewFileTokenProvider(""), func() error { return nil }, nil
}
