package service

import (
	"context"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/auth"
	"github.com/youssefsiam38/motoadmin/hooks"
	"github.com/youssefsiam38/motoadmin/storage"
)

// Default configuration values.
const (
	DefaultPageSize       = motoadmin.DefaultPageLimit
	DefaultRentalPageSize = 5
	DefaultActivityLimit  = 10
)

// API is the part of the rental API the console uses.
// *motoadmin.Client satisfies it.
type API interface {
	GetDashboardStats(ctx context.Context) (*motoadmin.DashboardStats, error)
	ListMotorcycles(ctx context.Context, params motoadmin.ListParams) (*motoadmin.MotorcyclePage, error)
	AddMotorcycle(ctx context.Context, in *motoadmin.MotorcycleInput) (*motoadmin.Motorcycle, error)
	UpdateMotorcycle(ctx context.Context, id string, in *motoadmin.MotorcycleInput) (*motoadmin.Motorcycle, error)
	DeleteMotorcycle(ctx context.Context, id string) error
	ListUsers(ctx context.Context, params motoadmin.ListParams) (*motoadmin.UserPage, error)
	VerifyUser(ctx context.Context, id string) (*motoadmin.User, error)
	ListRentals(ctx context.Context) ([]*motoadmin.Rental, error)
	ReturnMotorcycle(ctx context.Context, id string) (*motoadmin.Rental, error)
}

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds Service configuration.
type Config struct {
	// PageSize for server-paginated lists (motorcycles, users).
	// Defaults to 5.
	PageSize int

	// RentalPageSize for the locally paginated rental list.
	// Defaults to 5.
	RentalPageSize int

	// ActivityLimit is how many audit entries the dashboard shows.
	// Defaults to 10.
	ActivityLimit int

	// Hooks receives mutation events (optional).
	Hooks *hooks.Registry

	// Logger for structured logging (optional).
	Logger Logger
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.RentalPageSize <= 0 {
		c.RentalPageSize = DefaultRentalPageSize
	}
	if c.ActivityLimit <= 0 {
		c.ActivityLimit = DefaultActivityLimit
	}
}

// Service provides admin console operations.
type Service struct {
	api    API
	audit  storage.AuditStore
	config *Config
}

// New creates a new Service. audit may be nil, in which case the dashboard
// shows no recent activity.
func New(api API, audit storage.AuditStore, cfg *Config) *Service {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	c.applyDefaults()
	return &Service{
		api:    api,
		audit:  audit,
		config: &c,
	}
}

// PageSize returns the page size used for server-paginated lists.
func (s *Service) PageSize() int {
	return s.config.PageSize
}

// mutated reports a mutation to the hooks registry. Hook failures are
// logged, never returned: the API call already happened.
func (s *Service) mutated(ctx context.Context, action, subject string, err error) {
	if s.config.Hooks == nil {
		return
	}
	event := &hooks.MutationEvent{
		Actor:   actor(ctx),
		Action:  action,
		Subject: subject,
		Err:     err,
	}
	if hookErr := s.config.Hooks.TriggerMutation(ctx, event); hookErr != nil {
		s.logWarn("mutation hook failed", "action", action, "error", hookErr)
	}
}

// actor returns the email of the admin making the request.
func actor(ctx context.Context) string {
	if sess := auth.SessionFromContext(ctx); sess != nil {
		return sess.Email
	}
	return ""
}

func (s *Service) logWarn(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(msg, args...)
	}
}
