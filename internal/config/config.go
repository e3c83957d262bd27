package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/teemow/calimport/internal/google"
	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/logging"
)

// Calendar providers.
const (
	ProviderGoogle = "google"
	ProviderCalDAV = "caldav"
)

// Token stores for Google credentials.
const (
	TokenStoreFile   = "file"
	TokenStoreSQLite = "sqlite"
)

const (
	// DefaultTimeZone is attached to events that do not name a zone.
	DefaultTimeZone = "Europe/Oslo"
	// DefaultAccount is the token slot used when no account is given.
	DefaultAccount = "default"
	// FileName is the config file looked up in the working directory.
	FileName = "calimport.toml"
)

// Environment variables that override file values.
const (
	EnvCalendar           = "CALIMPORT_CALENDAR"
	EnvBatchFile          = "CALIMPORT_BATCH_FILE"
	EnvTimeZone           = "CALIMPORT_TIME_ZONE"
	EnvProvider           = "CALIMPORT_PROVIDER"
	EnvLookahead          = "CALIMPORT_LOOKAHEAD"
	EnvLogLevel           = "CALIMPORT_LOG_LEVEL"
	EnvGoogleClientID     = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvCalDAVURL          = "CALDAV_URL"
	EnvCalDAVUsername     = "CALDAV_USERNAME"
	EnvCalDAVPassword     = "CALDAV_PASSWORD"
)

// Config is the complete application configuration.
type Config struct {
	CalendarName string `toml:"calendar_name"`
	BatchFile    string `toml:"batch_file"`
	TimeZone     string `toml:"time_zone"`
	Lookahead    int    `toml:"lookahead"`
	Provider     string `toml:"provider"`
	Account      string `toml:"account"`

	Google GoogleConfig `toml:"google"`
	CalDAV CalDAVConfig `toml:"caldav"`
	Log    LogConfig    `toml:"log"`

	// Path is the file the configuration was read from, empty if none.
	Path string `toml:"-"`
}

// GoogleConfig holds the OAuth client and token storage settings.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
	TokenStore   string `toml:"token_store"`
	// TokenDB is the sqlite database path when TokenStore is sqlite.
	TokenDB string `toml:"token_db"`
}

// CalDAVConfig holds the CalDAV server settings.
type CalDAVConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		TimeZone:  DefaultTimeZone,
		Lookahead: importer.DefaultLookahead,
		Provider:  ProviderGoogle,
		Account:   DefaultAccount,
		Google: GoogleConfig{
			RedirectURL: google.DefaultRedirectURL,
			TokenStore:  TokenStoreFile,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// Load builds the configuration. explicitPath, when set, must exist.
func Load(explicitPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	path, err := findFile(explicitPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
		cfg.Path = path
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths lists the implicit config file locations in lookup order.
func SearchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "calimport", "config.toml"))
	}
	return paths
}

func findFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q in config file %s", undecoded[0].String(), path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.CalendarName, EnvCalendar)
	setString(&c.BatchFile, EnvBatchFile)
	setString(&c.TimeZone, EnvTimeZone)
	setString(&c.Provider, EnvProvider)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Google.ClientID, EnvGoogleClientID)
	setString(&c.Google.ClientSecret, EnvGoogleClientSecret)
	setString(&c.CalDAV.URL, EnvCalDAVURL)
	setString(&c.CalDAV.Username, EnvCalDAVUsername)
	setString(&c.CalDAV.Password, EnvCalDAVPassword)

	if v := os.Getenv(EnvLookahead); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvLookahead, v, err)
		}
		c.Lookahead = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks values that the rest of the application relies on.
// Credentials are checked where they are used.
func (c *Config) Validate() error {
	if c.Lookahead <= 0 {
		return fmt.Errorf("lookahead must be positive, got %d", c.Lookahead)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil || c.TimeZone == "" {
		return fmt.Errorf("invalid time zone %q", c.TimeZone)
	}
	if err := google.ValidateAccountName(c.Account); err != nil {
		return err
	}

	switch c.Provider {
	case ProviderGoogle:
		switch c.Google.TokenStore {
		case TokenStoreFile, TokenStoreSQLite:
		default:
			return fmt.Errorf("invalid token store %q, must be one of: %s, %s", c.Google.TokenStore, TokenStoreFile, TokenStoreSQLite)
		}
	case ProviderCalDAV:
		if c.CalDAV.URL == "" {
			return fmt.Errorf("caldav provider needs a server URL (%s)", EnvCalDAVURL)
		}
	default:
		return fmt.Errorf("invalid provider %q, must be one of: %s, %s", c.Provider, ProviderGoogle, ProviderCalDAV)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q, must be one of: %s, %s", c.Log.Format, logging.FormatText, logging.FormatJSON)
	}
	return nil
}

// TokenDBPath returns the sqlite token database path, defaulting to the
// user cache directory.
func (c *Config) TokenDBPath() string {
	if c.Google.TokenDB != "" {
		return c.Google.TokenDB
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "calimport", "tokens.db")
}
