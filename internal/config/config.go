// Package config loads the motoadmin binary's settings from the
// environment, after an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQL      = "sql"
	StoreRedis    = "redis"
)

// minSecretLength matches auth.MinSecretLength.
const minSecretLength = 32

// Config is the binary's configuration.
type Config struct {
	Addr       string        `env:"MOTOADMIN_ADDR"        envDefault:":8080"`
	APIURL     string        `env:"MOTOADMIN_API_URL"     envDefault:"http://localhost:5000/api"`
	APITimeout time.Duration `env:"MOTOADMIN_API_TIMEOUT" envDefault:"10s"`

	SessionSecret string        `env:"MOTOADMIN_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"MOTOADMIN_SESSION_TTL"    envDefault:"24h"`
	SecureCookies bool          `env:"MOTOADMIN_SECURE_COOKIES" envDefault:"false"`

	Store       string `env:"MOTOADMIN_STORE" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	PageSize   int     `env:"MOTOADMIN_PAGE_SIZE"   envDefault:"5"`
	LoginRate  float64 `env:"MOTOADMIN_LOGIN_RATE"  envDefault:"0.2"`
	LoginBurst int     `env:"MOTOADMIN_LOGIN_BURST" envDefault:"5"`

	CleanupInterval time.Duration `env:"MOTOADMIN_CLEANUP_INTERVAL" envDefault:"1m"`
	AuditRetention  time.Duration `env:"MOTOADMIN_AUDIT_RETENTION"  envDefault:"720h"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateSession checks the settings only the web server needs.
func (c *Config) ValidateSession() error {
	if len(c.SessionSecret) < minSecretLength {
		return fmt.Errorf("MOTOADMIN_SESSION_SECRET must be at least %d bytes", minSecretLength)
	}
	return nil
}

// Validate checks settings that the environment parser cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("MOTOADMIN_API_URL must be an absolute http(s) URL, got %q", c.APIURL)
	}

	switch c.Store {
	case StoreMemory:
	case StorePostgres, StoreSQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when MOTOADMIN_STORE=%s", c.Store)
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when MOTOADMIN_STORE=redis")
		}
	default:
		return fmt.Errorf("MOTOADMIN_STORE must be one of memory, postgres, sql, redis, got %q", c.Store)
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		return errors.New("MOTOADMIN_PAGE_SIZE must be between 1 and 100")
	}
	if c.SessionTTL < time.Minute {
		return errors.New("MOTOADMIN_SESSION_TTL must be at least 1m")
	}
	if c.LoginRate <= 0 || c.LoginBurst < 1 {
		return errors.New("MOTOADMIN_LOGIN_RATE and MOTOADMIN_LOGIN_BURST must be positive")
	}
	if c.CleanupInterval <= 0 || c.AuditRetention <= 0 {
		return errors.New("MOTOADMIN_CLEANUP_INTERVAL and MOTOADMIN_AUDIT_RETENTION must be positive")
	}
	return nil
}
