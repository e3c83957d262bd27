package google

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

// SQLiteTokenProvider keeps tokens in a tokens table keyed by account name.
type SQLiteTokenProvider struct {
	db *sql.DB
}

var _ TokenStore = (*SQLiteTokenProvider)(nil)

// OpenSQLiteTokenProvider opens (and if needed creates) the token database at path.
func OpenSQLiteTokenProvider(ctx context.Context, path string) (*SQLiteTokenProvider, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create token database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tokens (
		account_name TEXT PRIMARY KEY,
		token TEXT)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tokens table: %w", err)
	}

	return &SQLiteTokenProvider{db: db}, nil
}

// Close closes the database.
func (p *SQLiteTokenProvider) Close() error {
	return p.db.Close()
}

// GetTokenForAccount reads the token for account.
func (p *SQLiteTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	var tokenJSON []byte
	err := p.db.QueryRowContext(ctx, "SELECT token FROM tokens WHERE account_name = ?", account).Scan(&tokenJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("invalid stored token for account %s: %w", account, err)
	}
	return &token, nil
}

// HasTokenForAccount reports whether a row exists for account.
func (p *SQLiteTokenProvider) HasTokenForAccount(account string) bool {
	if ValidateAccountName(account) != nil {
		return false
	}
	var n int
	err := p.db.QueryRow("SELECT COUNT(*) FROM tokens WHERE account_name = ?", account).Scan(&n)
	return err == nil && n > 0
}

// SaveTokenForAccount inserts or replaces the token for account.
func (p *SQLiteTokenProvider) SaveTokenForAccount(ctx context.Context, account string, token *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}

	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	_, err = p.db.ExecContext(ctx, "INSERT OR REPLACE INTO tokens (account_name, token) VALUES (?, ?)", account, string(tokenJSON))
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
