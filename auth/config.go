// Package auth gates the console on an admin session.
//
// A successful login stores the API token and the user record server side
// (storage.SessionStore). The browser only carries a signed cookie holding
// the opaque session id, so the bearer token never reaches the page.
package auth

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/youssefsiam38/motoadmin/hooks"
)

// Default configuration values.
const (
	DefaultCookieName    = "motoadmin_session"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultLoginRate     = 0.2
	DefaultLoginBurst    = 5
	DefaultTouchInterval = time.Minute

	// MinSecretLength is the shortest accepted cookie signing secret.
	MinSecretLength = 32
)

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds Manager configuration.
type Config struct {
	// SessionSecret signs the session cookie. Required, at least
	// MinSecretLength bytes.
	SessionSecret string

	// CookieName is the session cookie name.
	// Default: "motoadmin_session"
	CookieName string

	// SessionTTL is how long a session lives without activity.
	// Default: 24 hours
	SessionTTL time.Duration

	// TouchInterval throttles how often request activity extends a session.
	// Default: 1 minute
	TouchInterval time.Duration

	// Secure marks the cookie HTTPS-only.
	Secure bool

	// LoginRate is the sustained number of login attempts per second
	// allowed from one client address.
	// Default: 0.2 (one every five seconds)
	LoginRate float64

	// LoginBurst is how many attempts a client may make back to back.
	// Default: 5
	LoginBurst int

	// Hooks receives login and logout events (optional).
	Hooks *hooks.Registry

	// Clock is used for expiry (optional).
	Clock clockwork.Clock

	// Logger for structured logging (optional).
	Logger Logger
}

// DefaultConfig returns a Config with default values and no secret.
func DefaultConfig() *Config {
	return &Config{
		CookieName:    DefaultCookieName,
		SessionTTL:    DefaultSessionTTL,
		TouchInterval: DefaultTouchInterval,
		LoginRate:     DefaultLoginRate,
		LoginBurst:    DefaultLoginBurst,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.TouchInterval == 0 {
		c.TouchInterval = DefaultTouchInterval
	}
	if c.LoginRate == 0 {
		c.LoginRate = DefaultLoginRate
	}
	if c.LoginBurst == 0 {
		c.LoginBurst = DefaultLoginBurst
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSecretLength {
		return fmt.Errorf("%w: session secret must be at least %d bytes", ErrInvalidConfig, MinSecretLength)
	}
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("%w: session TTL must be at least one minute", ErrInvalidConfig)
	}
	if c.LoginRate < 0 || c.LoginBurst < 1 {
		return fmt.Errorf("%w: login rate and burst must be positive", ErrInvalidConfig)
	}
	return nil
}
