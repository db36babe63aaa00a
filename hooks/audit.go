package hooks

import (
	"context"
	"errors"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/storage"
)

// AuditHooks writes admin activity to the audit log shown on the dashboard.
type AuditHooks struct {
	store storage.AuditStore
}

// NewAuditHooks creates audit hooks writing to store.
func NewAuditHooks(store storage.AuditStore) *AuditHooks {
	return &AuditHooks{store: store}
}

// Register adds the audit hooks to r.
func (h *AuditHooks) Register(r *Registry) {
	r.OnLogin(h.Login)
	r.OnLogout(h.Logout)
	r.OnMutation(h.Mutation)
}

// Login records a login attempt. Attempts rejected before the API answered
// (form validation, throttling) are skipped, so unauthenticated clients
// cannot grow the log faster than the rate limiter allows.
func (h *AuditHooks) Login(ctx context.Context, event *LoginEvent) error {
	if event.Email == "" || event.Throttled {
		return nil
	}
	var valErr *motoadmin.ValidationError
	if errors.As(event.Err, &valErr) {
		return nil
	}
	return h.store.RecordAudit(ctx, entry(event.Email, ActionLogin, "", event.Err))
}

// Logout records the end of a session.
func (h *AuditHooks) Logout(ctx context.Context, event *LogoutEvent) error {
	e := entry(event.Email, ActionLogout, "", nil)
	e.Detail = event.Reason
	return h.store.RecordAudit(ctx, e)
}

// Mutation records a mutating API call.
func (h *AuditHooks) Mutation(ctx context.Context, event *MutationEvent) error {
	return h.store.RecordAudit(ctx, entry(event.Actor, event.Action, event.Subject, event.Err))
}

func entry(actor, action, subject string, err error) *storage.AuditEntry {
	e := &storage.AuditEntry{
		Actor:   actor,
		Action:  action,
		Subject: subject,
		Status:  storage.AuditCompleted,
	}
	if err != nil {
		e.Status = storage.AuditFailed
		e.Detail = motoadmin.UserMessage(err)
	}
	return e
}
