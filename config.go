package motoadmin

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Circuit breaker defaults.
const (
	DefaultBreakerMaxFailures = 5
	DefaultBreakerOpenTimeout = 30 * time.Second
)

// Logger interface for structured logging.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ClientConfig holds configuration for the Client.
//
// Example:
//
//	client, err := motoadmin.NewClient(&motoadmin.ClientConfig{
//	    BaseURL: "https://rentals.example.com/api",
//	    Timeout: 5 * time.Second,
//	})
type ClientConfig struct {
	// BaseURL is the rental API root, e.g. "http://localhost:5000/api".
	// Default: DefaultBaseURL
	BaseURL string

	// HTTPClient is used for all requests (optional).
	// When nil a client with Timeout is created.
	HTTPClient *http.Client

	// Timeout bounds each API round trip when HTTPClient is nil.
	// Default: 10 seconds
	Timeout time.Duration

	// PageLimit is the page size requested from paginated endpoints.
	// Default: 5
	PageLimit int

	// BreakerMaxFailures is the number of consecutive failures (transport
	// errors and 5xx responses) that opens the circuit breaker.
	// Default: 5
	BreakerMaxFailures uint32

	// BreakerOpenTimeout is how long the breaker stays open before letting
	// a probe request through.
	// Default: 30 seconds
	BreakerOpenTimeout time.Duration

	// Logger for structured logging (optional).
	Logger Logger

	// OnRequest is called after every API round trip with the operation
	// name, HTTP status (0 when no response arrived) and latency.
	OnRequest func(op string, status int, elapsed time.Duration)

	// OnBreakerStateChange is called when the circuit breaker changes state.
	OnBreakerStateChange func(from, to string)
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:            DefaultBaseURL,
		Timeout:            DefaultTimeout,
		PageLimit:          DefaultPageLimit,
		BreakerMaxFailures: DefaultBreakerMaxFailures,
		BreakerOpenTimeout: DefaultBreakerOpenTimeout,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *ClientConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PageLimit == 0 {
		c.PageLimit = DefaultPageLimit
	}
	if c.BreakerMaxFailures == 0 {
		c.BreakerMaxFailures = DefaultBreakerMaxFailures
	}
	if c.BreakerOpenTimeout == 0 {
		c.BreakerOpenTimeout = DefaultBreakerOpenTimeout
	}
}

// Validate validates the configuration
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: BaseURL: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: BaseURL must be an http(s) URL", ErrInvalidConfig)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: BaseURL must include a host", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: Timeout must not be negative", ErrInvalidConfig)
	}
	if c.PageLimit < 1 {
		return fmt.Errorf("%w: PageLimit must be positive", ErrInvalidConfig)
	}
	return nil
}
