// Package config handles the XDG configuration directory, file paths and
// tunables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"gtodo/internal/reminder"
	"gtodo/internal/removal"
)

const (
	// AppName is the application directory name.
	AppName = "gtodo"

	// DBFile is the SQLite database filename.
	DBFile = "gtodo.db"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// EnvUndoWindow overrides the default undo window (a Go duration).
	EnvUndoWindow = "GTODO_UNDO_WINDOW"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// UndoWindow is how long a deletion can be undone.
	UndoWindow time.Duration

	// UndoSteps is the number of progress updates within UndoWindow.
	UndoSteps int

	// MinReminderLead is the minimum lead time for reminders set for today.
	MinReminderLead time.Duration

	// Logger is set by the dispatcher. Never nil after New.
	Logger *slog.Logger

	// Clock tells commands what "now" is. Real clock when nil.
	Clock clockwork.Clock
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/gtodo or $HOME/.config/gtodo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir:             dir,
		UndoWindow:      removal.DefaultWindow,
		UndoSteps:       removal.DefaultSteps,
		MinReminderLead: reminder.DefaultMinLead,
		Logger:          slog.New(slog.DiscardHandler),
		Clock:           clockwork.NewRealClock(),
	}

	if v := os.Getenv(EnvUndoWindow); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvUndoWindow, v)
		}
		cfg.UndoWindow = d
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Removal returns the undo countdown settings.
func (c *Config) Removal() removal.Config {
	return removal.Config{Window: c.UndoWindow, Steps: c.UndoSteps}
}

// Log returns the configured logger, or a discarding one when unset.
func (c *Config) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// ClockOrReal returns the configured clock, or the real one when unset.
func (c *Config) ClockOrReal() clockwork.Clock {
	if c.Clock == nil {
		return clockwork.NewRealClock()
	}
	return c.Clock
}

// ReminderLead returns the minimum lead for same-day reminders.
func (c *Config) ReminderLead() time.Duration {
	if c.MinReminderLead <= 0 {
		return reminder.DefaultMinLead
	}
	return c.MinReminderLead
}

// DBPath returns the path to the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.Dir, DBFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
