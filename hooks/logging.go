package hooks

import (
	"context"
)

// Logger interface for structured logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// LoggingHooks provides built-in logging hooks for observability
type LoggingHooks struct {
	logger Logger
}

// NewLoggingHooks creates logging hooks with the provided logger
func NewLoggingHooks(logger Logger) *LoggingHooks {
	return &LoggingHooks{logger: logger}
}

// Register adds the logging hooks to r.
func (h *LoggingHooks) Register(r *Registry) {
	r.OnLogin(h.Login)
	r.OnLogout(h.Logout)
	r.OnMutation(h.Mutation)
}

// Login logs a login attempt
func (h *LoggingHooks) Login(ctx context.Context, event *LoginEvent) error {
	if event.Err != nil {
		h.logger.Warn("admin login failed", "email", event.Email, "remote_addr", event.RemoteAddr, "error", event.Err)
		return nil
	}
	h.logger.Info("admin logged in", "email", event.Email, "user_id", event.UserID, "remote_addr", event.RemoteAddr)
	return nil
}

// Logout logs the end of a session
func (h *LoggingHooks) Logout(ctx context.Context, event *LogoutEvent) error {
	if event.Reason != "" {
		h.logger.Warn("admin session ended", "email", event.Email, "reason", event.Reason)
		return nil
	}
	h.logger.Info("admin logged out", "email", event.Email)
	return nil
}

// Mutation logs a mutating API call
func (h *LoggingHooks) Mutation(ctx context.Context, event *MutationEvent) error {
	if event.Err != nil {
		h.logger.Warn("admin action failed", "actor", event.Actor, "action", event.Action, "subject", event.Subject, "error", event.Err)
		return nil
	}
	h.logger.Info("admin action", "actor", event.Actor, "action", event.Action, "subject", event.Subject)
	return nil
}

// MetricsHooks collects metrics for monitoring
type MetricsHooks struct {
	OnMetric func(name string, value float64, tags map[string]string)
}

// NewMetricsHooks creates metrics collection hooks
func NewMetricsHooks(onMetric func(string, float64, map[string]string)) *MetricsHooks {
	return &MetricsHooks{OnMetric: onMetric}
}

// Register adds the metrics hooks to r.
func (h *MetricsHooks) Register(r *Registry) {
	r.OnLogin(h.Login)
	r.OnMutation(h.Mutation)
}

// Login records login outcomes
func (h *MetricsHooks) Login(ctx context.Context, event *LoginEvent) error {
	h.OnMetric("motoadmin.login", 1, map[string]string{"result": result(event.Err)})
	return nil
}

// Mutation records admin actions
func (h *MetricsHooks) Mutation(ctx context.Context, event *MutationEvent) error {
	h.OnMetric("motoadmin.mutation", 1, map[string]string{"action": event.Action, "result": result(event.Err)})
	return nil
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
