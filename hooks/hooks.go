// Package hooks lets the console notify observers about admin activity.
package hooks

import (
	"context"
	"sync"
)

// Actions recorded for admin activity.
const (
	ActionLogin            = "Login"
	ActionLogout           = "Logout"
	ActionAddMotorcycle    = "Add motorcycle"
	ActionUpdateMotorcycle = "Update motorcycle"
	ActionDeleteMotorcycle = "Delete motorcycle"
	ActionVerifyUser       = "Verify user"
	ActionReturnMotorcycle = "Return motorcycle"
)

// LoginEvent describes a login attempt. Err is nil on success.
type LoginEvent struct {
	Email      string
	UserID     string
	SessionID  string
	RemoteAddr string
	// Throttled is set when the attempt was refused by the login rate
	// limiter without reaching the API.
	Throttled bool
	Err       error
}

// LogoutEvent describes an explicit or forced logout.
type LogoutEvent struct {
	Email     string
	SessionID string
	// Reason is empty for an explicit logout, otherwise why the session ended
	// (for example "token rejected").
	Reason string
}

// MutationEvent describes a create/update/delete made through the API.
type MutationEvent struct {
	Actor   string
	Action  string
	Subject string
	Err     error
}

// LoginHook is called after a login attempt
type LoginHook func(ctx context.Context, event *LoginEvent) error

// LogoutHook is called after a session ends
type LogoutHook func(ctx context.Context, event *LogoutEvent) error

// MutationHook is called after a mutating API call
type MutationHook func(ctx context.Context, event *MutationEvent) error

// Registry holds all registered hooks
type Registry struct {
	mu       sync.RWMutex
	login    []LoginHook
	logout   []LogoutHook
	mutation []MutationHook
}

// NewRegistry creates a new hook registry
func NewRegistry() *Registry {
	return &Registry{
		login:    []LoginHook{},
		logout:   []LogoutHook{},
		mutation: []MutationHook{},
	}
}

// OnLogin registers a hook to be called after a login attempt
func (r *Registry) OnLogin(hook LoginHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.login = append(r.login, hook)
}

// OnLogout registers a hook to be called after a session ends
func (r *Registry) OnLogout(hook LogoutHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logout = append(r.logout, hook)
}

// OnMutation registers a hook to be called after a mutating API call
func (r *Registry) OnMutation(hook MutationHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutation = append(r.mutation, hook)
}

// TriggerLogin calls all registered login hooks. Every hook runs; the first
// error is returned.
func (r *Registry) TriggerLogin(ctx context.Context, event *LoginEvent) error {
	r.mu.RLock()
	hooks := make([]LoginHook, len(r.login))
	copy(hooks, r.login)
	r.mu.RUnlock()

	var first error
	for _, hook := range hooks {
		if err := hook(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// TriggerLogout calls all registered logout hooks
func (r *Registry) TriggerLogout(ctx context.Context, event *LogoutEvent) error {
	r.mu.RLock()
	hooks := make([]LogoutHook, len(r.logout))
	copy(hooks, r.logout)
	r.mu.RUnlock()

	var first error
	for _, hook := range hooks {
		if err := hook(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// TriggerMutation calls all registered mutation hooks
func (r *Registry) TriggerMutation(ctx context.Context, event *MutationEvent) error {
	r.mu.RLock()
	hooks := make([]MutationHook, len(r.mutation))
	copy(hooks, r.mutation)
	r.mu.RUnlock()

	var first error
	for _, hook := range hooks {
		if err := hook(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
