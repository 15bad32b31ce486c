package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	appLog "couplecal/internal/log"
)

// ErrEmptyPath is returned by Load and Save when no config path is given.
var ErrEmptyPath = errors.New("config path is empty")

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "Local"
	defaultLogLevel     = "info"
	defaultReminderCron = "0 8 * * *"
	defaultReminderDays = 14
	defaultFeedYears    = 5

	// envPrefix namespaces environment overrides (COUPLECAL_LISTEN, ...).
	envPrefix = "COUPLECAL_"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and the ICS feed.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone "now" is read in (e.g. "Asia/Seoul").
	// "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ReminderCron is a standard 5-field cron schedule for the reminder job.
	ReminderCron string `yaml:"reminder_cron" json:"reminder_cron"`

	// ReminderDays is how far ahead the reminder job looks.
	ReminderDays int `yaml:"reminder_days" json:"reminder_days"`

	// FeedYears is how many years of Easter the ICS feed lists explicitly.
	FeedYears int `yaml:"feed_years" json:"feed_years"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       defaultListen,
		Timezone:     defaultTimezone,
		LogLevel:     defaultLogLevel,
		ReminderCron: defaultReminderCron,
		ReminderDays: defaultReminderDays,
		FeedYears:    defaultFeedYears,
		CORSOrigins:  []string{"http://localhost:5173"},
		BasicAuth:    nil,
	}
}

// Normalize fills in missing or invalid values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		appLog.Warn("config: unknown timezone; using Local", "timezone", c.Timezone)
		c.Timezone = defaultTimezone
	}
	if _, ok := appLog.ParseLevel(c.LogLevel); !ok {
		c.LogLevel = defaultLogLevel
	}
	if c.ReminderCron == "" {
		c.ReminderCron = defaultReminderCron
	}
	if _, err := cron.ParseStandard(c.ReminderCron); err != nil {
		appLog.Warn("config: invalid reminder_cron; using default", "reminder_cron", c.ReminderCron, "err", err)
		c.ReminderCron = defaultReminderCron
	}
	if c.ReminderDays <= 0 {
		c.ReminderDays = defaultReminderDays
	}
	if c.FeedYears <= 0 {
		c.FeedYears = defaultFeedYears
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{}
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// ApplyEnv loads the given dotenv files (missing files are ignored) and
// then applies COUPLECAL_* environment overrides on top of c. Variables
// already set in the process environment win over dotenv values.
func (c *Config) ApplyEnv(dotenvFiles ...string) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			appLog.Warn("config: failed to load dotenv file", "file", f, "err", err)
		}
	}

	if v, ok := lookupEnv("LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := lookupEnv("TIMEZONE"); ok {
		c.Timezone = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookupEnv("REMINDER_CRON"); ok {
		c.ReminderCron = v
	}
	if v, ok := lookupEnv("REMINDER_DAYS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.ReminderDays = n
		}
	}
	if v, ok := lookupEnv("FEED_YEARS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.FeedYears = n
		}
	}
	if v, ok := lookupEnv("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	user, uok := lookupEnv("BASIC_AUTH_USERNAME")
	pass, pok := lookupEnv("BASIC_AUTH_PASSWORD")
	if uok && pok {
		c.BasicAuth = &BasicAuthConfig{Username: user, Password: pass}
	}

	c.Normalize()
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".couplecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
