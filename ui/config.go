package ui

import (
	"github.com/youssefsiam38/motoadmin/hooks"
	"github.com/youssefsiam38/motoadmin/ui/service"
)

// Default configuration values.
const (
	DefaultPageSize       = service.DefaultPageSize
	DefaultRentalPageSize = service.DefaultRentalPageSize
	DefaultActivityLimit  = service.DefaultActivityLimit

	// maxPageSize bounds page sizes sent to the rental API.
	maxPageSize = 100
)

// Config holds UI package configuration.
type Config struct {
	// PageSize for motorcycles and users, which the rental API paginates.
	// Defaults to 5.
	PageSize int

	// RentalPageSize for rentals, which are paginated locally.
	// Defaults to 5.
	RentalPageSize int

	// ActivityLimit is how many audit entries the dashboard shows.
	// Defaults to 10.
	ActivityLimit int

	// Hooks receives an event for every mutation made through the console.
	// If nil, mutations are not audited.
	Hooks *hooks.Registry

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger
}

// Logger interface for structured logging.
// Compatible with *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		PageSize:       DefaultPageSize,
		RentalPageSize: DefaultRentalPageSize,
		ActivityLimit:  DefaultActivityLimit,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.RentalPageSize == 0 {
		c.RentalPageSize = DefaultRentalPageSize
	}
	if c.ActivityLimit == 0 {
		c.ActivityLimit = DefaultActivityLimit
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return ErrInvalidConfig
	}
	if c.RentalPageSize < 1 || c.RentalPageSize > maxPageSize {
		return ErrInvalidConfig
	}
	if c.ActivityLimit < 1 || c.ActivityLimit > maxPageSize {
		return ErrInvalidConfig
	}
	return nil
}
