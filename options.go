package motoadmin

import (
	"fmt"
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client
type Option func(*ClientConfig) error

// WithBaseURL sets the rental API root
func WithBaseURL(baseURL string) Option {
	return func(c *ClientConfig) error {
		c.BaseURL = baseURL
		return nil
	}
}

// WithHTTPClient replaces the HTTP client used for API calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ClientConfig) error {
		if hc == nil {
			return fmt.Errorf("%w: http client must not be nil", ErrInvalidConfig)
		}
		c.HTTPClient = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *ClientConfig) error {
		c.Timeout = d
		return nil
	}
}

// WithPageLimit sets the page size requested from paginated endpoints
func WithPageLimit(n int) Option {
	return func(c *ClientConfig) error {
		c.PageLimit = n
		return nil
	}
}

// WithBreaker configures the circuit breaker thresholds
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *ClientConfig) error {
		c.BreakerMaxFailures = maxFailures
		c.BreakerOpenTimeout = openTimeout
		return nil
	}
}

// WithLogger sets the structured logger
func WithLogger(l Logger) Option {
	return func(c *ClientConfig) error {
		c.Logger = l
		return nil
	}
}
