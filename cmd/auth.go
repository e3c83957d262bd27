package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/config"
	"github.com/teemow/calimport/internal/console"
	"github.com/teemow/calimport/internal/google"
	"github.com/teemow/calimport/internal/logging"
)

func newAuthCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google calendar credentials",
	}

	cmd.AddCommand(newAuthLoginCmd(opts))
	cmd.AddCommand(newAuthStatusCmd(opts))

	return cmd
}

func newAuthLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize calimport to use a Google calendar account",
		Long: `Print the Google consent URL, then read back the authorization code.

After granting access the browser is sent to the redirect URL, which does
not need to load. Paste either the code or the whole URL from the address
bar. The token is stored for --account and refreshed automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Provider != config.ProviderGoogle {
				return fmt.Errorf("provider %s does not use OAuth login", cfg.Provider)
			}

			conf, err := google.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
			if err != nil {
				return err
			}
			store, closeStore, err := openTokenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			term := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
			term.Println("Open this URL in your browser and grant access:")
			term.Println(google.AuthCodeURL(conf, "calimport"))

			answer, err := term.ReadLine(ctx, "Authorization code or redirect URL: ")
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code, err := extractAuthCode(answer)
			if err != nil {
				return err
			}

			if _, err := google.Exchange(ctx, conf, store, cfg.Account, code); err != nil {
				return err
			}
			logger.Info("stored token")
			term.Println(fmt.Sprintf("Account %s is authenticated.", cfg.Account))
			return nil
		},
	}
}

func newAuthStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the account has stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.Provider == config.ProviderCalDAV {
				fmt.Fprintf(out, "Provider caldav at %s, user %q (basic auth, no stored token)\n", cfg.CalDAV.URL, cfg.CalDAV.Username)
				return nil
			}

			store, closeStore, err := openTokenStore(context.WithoutCancel(cmd.Context()), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			location := cfg.TokenDBPath()
			if fp, ok := store.(*google.FileTokenProvider); ok {
				location = fp.TokenFilePath(cfg.Account)
			}

			if store.HasTokenForAccount(cfg.Account) {
				if token, err := store.GetTokenForAccount(cmd.Context(), cfg.Account); err == nil {
					logger.Debug("stored token",
						slog.String("access_token", logging.SanitizeToken(token.AccessToken)),
						slog.Bool("refresh_token", token.RefreshToken != ""),
						slog.Time("expiry", token.Expiry))
				}
				fmt.Fprintf(out, "Account %s: authenticated (%s)\n", cfg.Account, location)
				return nil
			}
			fmt.Fprintf(out, "Account %s: not authenticated, run 'calimport auth login --account %s'\n", cfg.Account, cfg.Account)
			return nil
		},
	}
}

// extractAuthCode accepts a bare authorization code or the redirect URL
// carrying it in the code query parameter.
func extractAuthCode(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("no authorization code given")
	}
	if !strings.Contains(answer, "code=") {
		return answer, nil
	}

	u, err := url.Parse(answer)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}
	q := u.Query()
	if u.RawQuery == "" {
		q, err = url.ParseQuery(answer)
		if err != nil {
			return "", fmt.Errorf("invalid redirect URL: %w", err)
		}
	}
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("no code parameter in %q", answer)
	}
	return code, nil
}
