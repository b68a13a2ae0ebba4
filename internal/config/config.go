// Package config provides host configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (CANVAS_* runtime overrides)
//  2. Config file (~/.canvas/config.yaml, or ./config.yaml)
//  3. Default values
//
// Validation is fail-fast: Load returns an error for out-of-range
// values rather than limping along with them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/panelhost/canvas/internal/log"
)

// Sentinel errors for configuration validation, checked with errors.Is().
var (
	// ErrInvalidPort indicates the listen port is out of range.
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidKeepCount indicates the session retention count is not positive.
	ErrInvalidKeepCount = errors.New("invalid session keep count")

	// ErrInvalidDiffLimit indicates the diff line cap is negative.
	ErrInvalidDiffLimit = errors.New("invalid diff line limit")

	// ErrInvalidRate indicates a rate limiter setting is negative.
	ErrInvalidRate = errors.New("invalid rate limit")

	// ErrInvalidNamespace indicates the storage namespace is unusable as
	// a directory name.
	ErrInvalidNamespace = errors.New("invalid namespace")

	// ErrInvalidLogLevel indicates the log level name is unknown.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	// DefaultPort is the loopback websocket port remote CLIs connect to.
	DefaultPort = 19960

	// DefaultNamespace is the sub-path under <root>/tmp that holds all
	// session directories.
	DefaultNamespace = "canvas"

	// DefaultKeepCount is the number of recent sessions retained by
	// cleanup.
	DefaultKeepCount = 10

	// DefaultMaxDiffLines caps each side of a diff request.
	DefaultMaxDiffLines = 5000

	// DefaultRatePerSecond and DefaultRateBurst bound how fast a single
	// connection may submit messages. Generous for interactive CLIs.
	DefaultRatePerSecond = 50
	DefaultRateBurst     = 100
)

// Config stores host configuration.
type Config struct {
	// Port is the loopback websocket listen port.
	Port int `mapstructure:"port"`

	// StorageRoot is the base directory for artifact persistence.
	// Empty means "use the working directory"; if no directory can be
	// resolved the host runs without persistence.
	StorageRoot string `mapstructure:"storage_root"`

	// Namespace is the directory segment under <root>/tmp that scopes
	// this host's sessions.
	Namespace string `mapstructure:"namespace"`

	// SessionKeepCount is how many recent sessions cleanup retains.
	SessionKeepCount int `mapstructure:"session_keep_count"`

	// MaxDiffLines caps each input side of a diff. 0 disables the cap.
	MaxDiffLines int `mapstructure:"max_diff_lines"`

	// RatePerSecond / RateBurst bound per-connection message intake.
	// 0 disables rate limiting.
	RatePerSecond int `mapstructure:"rate_per_second"`
	RateBurst     int `mapstructure:"rate_burst"`

	// Logging.
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".canvas")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("CANVAS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("storage_root", "")
	v.SetDefault("namespace", DefaultNamespace)
	v.SetDefault("session_keep_count", DefaultKeepCount)
	v.SetDefault("max_diff_lines", DefaultMaxDiffLines)
	v.SetDefault("rate_per_second", DefaultRatePerSecond)
	v.SetDefault("rate_burst", DefaultRateBurst)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// Validate checks all configuration values, wrapping the matching
// sentinel error for each violation.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPort, c.Port)
	}
	if c.SessionKeepCount < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidKeepCount, c.SessionKeepCount)
	}
	if c.MaxDiffLines < 0 {
		return fmt.Errorf("%w: %d (must not be negative)", ErrInvalidDiffLimit, c.MaxDiffLines)
	}
	if c.RatePerSecond < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: per_second=%d burst=%d", ErrInvalidRate, c.RatePerSecond, c.RateBurst)
	}
	if c.Namespace == "" || filepath.Base(c.Namespace) != c.Namespace {
		return fmt.Errorf("%w: %q (must be a single path segment)", ErrInvalidNamespace, c.Namespace)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// ResolveStorageRoot resolves the base directory for persistence.
// An explicitly configured root is used as-is; otherwise the working
// directory is used. The empty string (with an error) means no root is
// available and the host runs without persistence.
func (c *Config) ResolveStorageRoot() (string, error) {
	if c.StorageRoot != "" {
		return c.StorageRoot, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return wd, nil
}

// Addr returns the loopback listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}
