// Package config provides YAML configuration parsing for atelier.
//
// Every field is optional; a missing file or an empty document yields the
// defaults from [Default].
//
// Example configuration:
//
//	title: Jewelry Order Management
//	data_dir: ${ATELIER_HOME:-~/.atelier}
//
//	server:
//	  host: 127.0.0.1
//	  port: 3001
//
//	window:
//	  width: 1400
//	  height: 900
//	  policy: auto
//
//	reminders:
//	  schedule: "@every 1m"
//	  window: 24h
//
//	log:
//	  level: info
//	  file: ${ATELIER_LOG:-}
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultTitle            = "Jewelry Order Management"
	DefaultHost             = "127.0.0.1"
	DefaultPort             = 3001
	DefaultDatabase         = "atelier.db"
	DefaultWidth            = 1400
	DefaultHeight           = 900
	DefaultPolicy           = "auto"
	DefaultReminderSchedule = "@every 1m"
	DefaultReminderWindow   = 24 * time.Hour
	DefaultLogLevel         = "info"
)

// policies are the accepted window.policy values.
var policies = map[string]bool{
	"auto":       true,
	"quit":       true,
	"keep_alive": true,
}

// Config is the root configuration structure.
//
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the window and page title.
	Title string `yaml:"title"`

	// DataDir holds the database. Defaults to <user config dir>/atelier.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	// and a leading "~/".
	DataDir string `yaml:"data_dir"`

	// Database is the sqlite file name, relative to DataDir unless absolute.
	Database string `yaml:"database"`

	// AssetsDir serves the UI from disk instead of the embedded bundle.
	AssetsDir string `yaml:"assets_dir"`

	Server    ServerConfig   `yaml:"server"`
	Window    WindowConfig   `yaml:"window"`
	Reminders ReminderConfig `yaml:"reminders"`
	Log       LogConfig      `yaml:"log"`
}

// ServerConfig configures the embedded API server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WindowConfig configures the main window.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Policy is what happens when the last window closes: "quit",
	// "keep_alive", or "auto" for the platform default.
	Policy string `yaml:"policy"`
}

// ReminderConfig configures the overdue/upcoming sweep.
type ReminderConfig struct {
	// Schedule is a cron expression or descriptor such as "@every 5m".
	Schedule string `yaml:"schedule"`

	// Window is how far ahead appointments count as upcoming.
	Window Duration `yaml:"window"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// File enables a rotating log file in addition to stderr.
	File string `yaml:"file"`

	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DatabasePath is the absolute-or-relative path of the sqlite file.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(c.DataDir, c.Database)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := sub[2] != ""

		value, exists := os.LookupEnv(name)
		if !exists {
			if hasDefault {
				return sub[3]
			}
			firstErr = errors.Errorf("environment variable %q is not set", name)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in path-like fields are expanded after parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expand() error {
	fields := []struct {
		name string
		val  *string
	}{
		{"title", &c.Title},
		{"data_dir", &c.DataDir},
		{"database", &c.Database},
		{"assets_dir", &c.AssetsDir},
		{"log.file", &c.Log.File},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.val)
		if err != nil {
			return errors.Wrap(err, f.name)
		}
		expanded, err = expandHome(expanded)
		if err != nil {
			return errors.Wrap(err, f.name)
		}
		*f.val = expanded
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Window.Width == 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height == 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Window.Policy == "" {
		c.Window.Policy = DefaultPolicy
	}
	if c.Reminders.Schedule == "" {
		c.Reminders.Schedule = DefaultReminderSchedule
	}
	if c.Reminders.Window == 0 {
		c.Reminders.Window = Duration(DefaultReminderWindow)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

// Validate checks a configuration with defaults applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if !policies[c.Window.Policy] {
		return errors.Errorf("window.policy must be auto, quit or keep_alive, got %q", c.Window.Policy)
	}
	if _, err := cron.ParseStandard(c.Reminders.Schedule); err != nil {
		return errors.Wrapf(err, "reminders.schedule %q", c.Reminders.Schedule)
	}
	if c.Reminders.Window.Duration() < 0 {
		return errors.Errorf("reminders.window cannot be negative, got %s", c.Reminders.Window.Duration())
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "log.level")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("log rotation limits cannot be negative")
	}
	if c.AssetsDir != "" {
		info, err := os.Stat(c.AssetsDir)
		if err != nil {
			return errors.Wrap(err, "assets_dir")
		}
		if !info.IsDir() {
			return errors.Errorf("assets_dir %q is not a directory", c.AssetsDir)
		}
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "atelier")
	}
	return ".atelier"
}
