package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no token has been stored for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

// TokenProvider is an interface for providing OAuth tokens for Google APIs
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// TokenStore is a TokenProvider that can also persist tokens.
type TokenStore interface {
	TokenProvider
	SaveTokenForAccount(ctx context.Context, account string, token *oauth2.Token) error
}

// FileTokenProvider stores one JSON token file per account.
type FileTokenProvider struct {
	dir string
}

var _ TokenStore = (*FileTokenProvider)(nil)

// NewFileTokenProvider creates a file-based token store rooted at dir.
// An empty dir means the calimport directory in the user cache.
func NewFileTokenProvider(dir string) *FileTokenProvider {
	if dir == "" {
		dir = filepath.Join(userCacheDir(), "calimport")
	}
	return &FileTokenProvider{dir: dir}
}

// TokenFilePath returns the file a token for account is stored in.
func (p *FileTokenProvider) TokenFilePath(account string) string {
	return filepath.Join(p.dir, fmt.Sprintf("google-%s.token", account))
}

// GetTokenForAccount reads the token for account.
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.TokenFilePath(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	return &token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	if ValidateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(p.TokenFilePath(account))
	return err == nil
}

// SaveTokenForAccount writes the token with owner-only permissions.
func (p *FileTokenProvider) SaveTokenForAccount(_ context.Context, account string, token *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(p.TokenFilePath(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
