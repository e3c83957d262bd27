package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultRedirectURL is used when no redirect URL is configured. The
// browser lands on a page that fails to load; the code is taken from the
// address bar.
const DefaultRedirectURL = "http://localhost"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAccountName ensures the account name only contains safe characters.
// Account names end up in file names and database keys.
func ValidateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// OAuthConfig returns the OAuth2 configuration for the calendar scope.
func OAuthConfig(clientID, clientSecret, redirectURL string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("google client id and secret are required (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)")
	}
	if redirectURL == "" {
		redirectURL = DefaultRedirectURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       DefaultOAuthScopes,
	}, nil
}

// AuthCodeURL returns the URL the operator opens to grant access. Offline
// access is requested so that a refresh token is issued.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it for account.
func Exchange(ctx context.Context, conf *oauth2.Config, store TokenStore, account, code string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := store.SaveTokenForAccount(ctx, account, token); err != nil {
		return nil, fmt.Errorf("failed to save token for account %s: %w", account, err)
	}

	return token, nil
}

// HTTPClient returns an HTTP client authenticated as account. Tokens that
// get refreshed along the way are saved back to store.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func HTTPClient(ctx context.Context, conf *oauth2.Config, store TokenStore, account string) (*http.Client, error) {
	token, err := store.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	ts := &persistingTokenSource{
		ctx:     ctx,
		base:    oauth2.ReuseTokenSource(token, conf.TokenSource(ctx, token)),
		store:   store,
		account: account,
		last:    token.AccessToken,
	}

	// Force HTTP/1.1 by disabling HTTP/2
	base := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   base,
		},
	}, nil
}

// persistingTokenSource saves a token whenever the access token changes.
type persistingTokenSource struct {
	ctx     context.Context
	base    oauth2.TokenSource
	store   TokenStore
	account string
	last    string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for account %s (run 'calimport auth login'): %w", s.account, err)
	}
	if token.AccessToken != s.last {
		if err := s.store.SaveTokenForAccount(s.ctx, s.account, token); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		s.last = token.AccessToken
	}
	return token, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
