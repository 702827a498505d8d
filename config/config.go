package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store drivers understood by the store factory.
const (
	DriverREST     = "rest"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Poll     PollConfig     `yaml:"poll"`
	Session  SessionConfig  `yaml:"session"`
	Display  DisplayConfig  `yaml:"display"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                 int     `yaml:"port" env:"PHOTOBOOTH_PORT"`
	RateLimitPerSec      float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst       int     `yaml:"rate_limit_burst"`
	ThumbnailCacheTTLSec int     `yaml:"thumbnail_cache_ttl_seconds"`
	ShutdownTimeoutSec   int     `yaml:"shutdown_timeout_seconds"`
}

// StoreConfig selects and configures the photo store backend.
type StoreConfig struct {
	Driver         string        `yaml:"driver" env:"PHOTOBOOTH_STORE_DRIVER"`
	URL            string        `yaml:"url" env:"PHOTOBOOTH_STORE_URL"`
	Key            string        `yaml:"key" env:"PHOTOBOOTH_STORE_KEY"`
	Table          string        `yaml:"table"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration for the
// postgres and sqlite drivers.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn" env:"PHOTOBOOTH_DATABASE_DSN"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `yaml:"auto_migrate"`
	LogLevel               string `yaml:"log_level"`
}

// PollConfig controls the controller refresh timer.
type PollConfig struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// SessionConfig controls how long an idle admin session keeps polling.
type SessionConfig struct {
	TTLMinutes int           `yaml:"ttl_minutes"`
	TTL        time.Duration `yaml:"-"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	Timezone      string `yaml:"timezone"`
	BoothURL      string `yaml:"booth_url"`
	ThumbnailSize int    `yaml:"thumbnail_size"`

	loc *time.Location
}

// Location returns the resolved display timezone, falling back to UTC.
func (d DisplayConfig) Location() *time.Location {
	if d.loc == nil {
		return time.UTC
	}
	return d.loc
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level" env:"PHOTOBOOTH_LOG_LEVEL"`
	Development bool   `yaml:"development"`
}

// Load reads the configuration from the given path, applies environment
// overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// env-only configuration
		case err != nil:
			return nil, err
		default:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.ThumbnailCacheTTLSec <= 0 {
		cfg.Server.ThumbnailCacheTTLSec = 600
	}
	if cfg.Server.ShutdownTimeoutSec <= 0 {
		cfg.Server.ShutdownTimeoutSec = 5
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverREST
	}
	switch cfg.Store.Driver {
	case DriverREST, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = "photos"
	}
	if cfg.Store.TimeoutSeconds <= 0 {
		cfg.Store.TimeoutSeconds = 10
	}
	cfg.Store.Timeout = time.Duration(cfg.Store.TimeoutSeconds) * time.Second

	if cfg.Poll.IntervalSeconds <= 0 {
		cfg.Poll.IntervalSeconds = 5
	}
	cfg.Poll.Interval = time.Duration(cfg.Poll.IntervalSeconds) * time.Second

	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 30
	}
	cfg.Session.TTL = time.Duration(cfg.Session.TTLMinutes) * time.Minute

	if cfg.Display.Timezone == "" {
		cfg.Display.Timezone = "Local"
	}
	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Display.Timezone, err)
	}
	cfg.Display.loc = loc
	if cfg.Display.BoothURL == "" {
		cfg.Display.BoothURL = "index.html"
	}
	if cfg.Display.ThumbnailSize <= 0 {
		cfg.Display.ThumbnailSize = 400
	}

	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}
