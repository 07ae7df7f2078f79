// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when it is read from the environment,
// so database_path becomes GRADEBOOK_DATABASE_PATH.
const EnvPrefix = "GRADEBOOK"

// Configuration keys shared by the environment, .env files and CLI flags.
const (
	KeyDatabasePath   = "database_path"
	KeyRosterPath     = "roster_path"
	KeyAlertThreshold = "alert_threshold"
	KeyLogLevel       = "log_level"
	KeyLogFile        = "log_file"
	KeyStudentName    = "student_name"
)

// Default values
const (
	defaultAlertThreshold = 70.0
	defaultLogLevel       = "info"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath string
	// RosterPath is optional. Empty keeps the gradebook in memory only.
	RosterPath  string
	LogLevel    string
	LogFile     string
	StudentName string
	// AlertThreshold is the overall average below which a desktop
	// notification fires. Zero disables alerts.
	AlertThreshold float64
}

// Load reads .env files into the process environment and resolves every key
// through v. Flags bound to v by the caller take precedence over the
// environment. A nil v uses a fresh instance.
func Load(v *viper.Viper) (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	cfg := &Config{
		DatabasePath:   expandHome(v.GetString(KeyDatabasePath)),
		RosterPath:     expandHome(v.GetString(KeyRosterPath)),
		AlertThreshold: v.GetFloat64(KeyAlertThreshold),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFile:        expandHome(v.GetString(KeyLogFile)),
		StudentName:    strings.TrimSpace(v.GetString(KeyStudentName)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if cfg.RosterPath != "" {
		if err := ensureDir(filepath.Dir(cfg.RosterPath)); err != nil {
			return nil, fmt.Errorf("failed to create roster directory: %w", err)
		}
	}

	return cfg, nil
}

// SetDefaults registers the environment prefix and default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDatabasePath, getDefaultDatabasePath())
	v.SetDefault(KeyRosterPath, "")
	v.SetDefault(KeyAlertThreshold, defaultAlertThreshold)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyLogFile, getDefaultLogPath())
	v.SetDefault(KeyStudentName, "")
}

// Validate checks values that cannot be used as given.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%s must not be empty", KeyDatabasePath)
	}
	if c.AlertThreshold < 0 {
		return fmt.Errorf("%s must not be negative, got %v", KeyAlertThreshold, c.AlertThreshold)
	}
	return nil
}

// AlertsEnabled reports whether average drop notifications should be sent.
func (c *Config) AlertsEnabled() bool {
	return c.AlertThreshold > 0
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if dir := configDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ".env"))
	}

	return paths
}

// configDir returns ~/.config/gradebook, or "" when home is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gradebook")
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	dir := configDir()
	if dir == "" {
		return "history.db"
	}
	return filepath.Join(dir, "history.db")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	dir := configDir()
	if dir == "" {
		return "gradebook.log"
	}
	return filepath.Join(dir, "gradebook.log")
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
