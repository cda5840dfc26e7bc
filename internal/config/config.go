// Package config loads screener configuration from TOML with an optional
// environment overlay file and SCREENER_* environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/JaimeStill/screener/internal/rules"
	"github.com/JaimeStill/screener/internal/status"
	"github.com/JaimeStill/screener/pkg/middleware"
	"github.com/JaimeStill/screener/pkg/pagination"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvScreenerEnv             = "SCREENER_ENV"
	EnvScreenerShutdownTimeout = "SCREENER_SHUTDOWN_TIMEOUT"
	EnvScreenerVersion         = "SCREENER_VERSION"
	EnvScreenerLogLevel        = "SCREENER_LOG_LEVEL"
)

var statusEnv = &status.Env{
	Enabled:         "SCREENER_STATUS_ENABLED",
	Host:            "SCREENER_STATUS_HOST",
	Port:            "SCREENER_STATUS_PORT",
	ReadTimeout:     "SCREENER_STATUS_READ_TIMEOUT",
	WriteTimeout:    "SCREENER_STATUS_WRITE_TIMEOUT",
	ShutdownTimeout: "SCREENER_STATUS_SHUTDOWN_TIMEOUT",
	CORS: &middleware.CORSEnv{
		Enabled: "SCREENER_STATUS_CORS_ENABLED",
		Origins: "SCREENER_STATUS_CORS_ORIGINS",
		MaxAge:  "SCREENER_STATUS_CORS_MAX_AGE",
	},
	Pagination: &pagination.Env{
		PageSize:  "SCREENER_STATUS_PAGE_SIZE",
		PageLimit: "SCREENER_STATUS_PAGE_LIMIT",
	},
}

// Config is the root configuration for a screening run.
type Config struct {
	Run             RunConfig         `toml:"run"`
	Classifiers     ClassifiersConfig `toml:"classifiers"`
	Checkpoint      CheckpointConfig  `toml:"checkpoint"`
	Rules           rules.Phrases     `toml:"rules"`
	Status          status.Config     `toml:"status"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	LogLevel        string            `toml:"log_level"`
	Version         string            `toml:"version"`
}

// Env returns the SCREENER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvScreenerEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the base config at path (config.toml when empty), applies any
// environment overlay, and finalizes all values. A missing default base file
// is not an error: defaults and environment variables provide everything.
// An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	base := path
	if base == "" {
		base = BaseConfigFile
	}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if path != "" {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if overlay := overlayPath(base); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Rules.Impact != nil {
		c.Rules.Impact = overlay.Rules.Impact
	}
	if overlay.Rules.Provision != nil {
		c.Rules.Provision = overlay.Rules.Provision
	}
	c.Run.Merge(&overlay.Run)
	c.Classifiers.Merge(&overlay.Classifiers)
	c.Checkpoint.Merge(&overlay.Checkpoint)
	c.Status.Merge(&overlay.Status)
}

// Finalize applies defaults, environment overrides, and validation to the
// root and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Run.Finalize(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if err := c.Classifiers.Finalize(); err != nil {
		return fmt.Errorf("classifiers: %w", err)
	}
	if err := c.Checkpoint.Finalize(); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := c.Status.Finalize(statusEnv); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}

	defaults := rules.DefaultPhrases()
	if len(c.Rules.Impact) == 0 {
		c.Rules.Impact = defaults.Impact
	}
	if len(c.Rules.Provision) == 0 {
		c.Rules.Provision = defaults.Provision
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvScreenerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvScreenerLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvScreenerVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// overlayPath returns config.<env>.toml beside base when SCREENER_ENV is set
// and the file exists.
func overlayPath(base string) string {
	env := os.Getenv(EnvScreenerEnv)
	if env == "" {
		return ""
	}

	dir := ""
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		dir = base[:i+1]
	}

	path := dir + fmt.Sprintf(OverlayConfigPattern, env)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
