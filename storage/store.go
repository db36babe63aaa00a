// Package storage persists console sessions, the audit log and the
// maintenance leader lease.
//
// MemoryStore keeps everything in process and suits a single console.
// SQL backends live in driver/pgxv5 and driver/databasesql; a Redis backend
// lives in storage/redisstore. All of them satisfy Store.
package storage

import (
	"context"
	"errors"
	"time"
)

// Errors returned by every Store implementation.
var (
	// ErrSessionNotFound is returned when a session does not exist or has expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession is returned when a session is missing required fields.
	ErrInvalidSession = errors.New("invalid session")
)

// SessionStore persists admin sessions.
type SessionStore interface {
	// CreateSession stores sess. sess.ID must be set by the caller.
	CreateSession(ctx context.Context, sess *Session) error

	// GetSession returns the session with the given id, or ErrSessionNotFound
	// if it does not exist or has expired.
	GetSession(ctx context.Context, id string) (*Session, error)

	// TouchSession records activity and pushes the expiry to expiresAt.
	TouchSession(ctx context.Context, id string, expiresAt time.Time) error

	// DeleteSession removes a session. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions removes sessions that expired before the given
	// time and returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error)
}

// AuditStore persists the admin activity log.
type AuditStore interface {
	// RecordAudit appends an entry. ID and CreatedAt are filled in when zero.
	RecordAudit(ctx context.Context, entry *AuditEntry) error

	// ListAudit returns up to limit entries, newest first.
	ListAudit(ctx context.Context, limit int) ([]*AuditEntry, error)

	// DeleteAuditBefore removes entries created before the given time.
	DeleteAuditBefore(ctx context.Context, before time.Time) (int, error)
}

// LeaderStore holds the lease that decides which console replica runs
// maintenance.
type LeaderStore interface {
	// LeaderAttemptElect takes the lease if it is free or expired.
	LeaderAttemptElect(ctx context.Context, params *LeaderElectParams) (bool, error)

	// LeaderAttemptReelect extends the lease if params.LeaderID still holds it.
	LeaderAttemptReelect(ctx context.Context, params *LeaderElectParams) (bool, error)

	// LeaderResign releases the lease if leaderID holds it.
	LeaderResign(ctx context.Context, leaderID string) error

	// LeaderDeleteExpired removes an expired lease.
	LeaderDeleteExpired(ctx context.Context) (int, error)
}

// Store is the full persistence surface used by the console.
type Store interface {
	SessionStore
	AuditStore
	LeaderStore
}

// Session is a logged-in admin. The bearer token never leaves the server.
type Session struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	CSRFToken  string    `json:"csrf_token"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Validate checks the fields every backend requires.
func (s *Session) Validate() error {
	if s == nil || s.ID == "" || s.Token == "" || s.ExpiresAt.IsZero() {
		return ErrInvalidSession
	}
	return nil
}

// Audit statuses.
const (
	AuditCompleted = "Completed"
	AuditFailed    = "Failed"
)

// AuditEntry is one line of the "Recent Activities" table.
type AuditEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderElectParams holds parameters for leader election.
type LeaderElectParams struct {
	LeaderID string
	TTL      time.Duration
}
