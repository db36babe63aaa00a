package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/youssefsiam38/motoadmin/storage"
)

// Store implements storage.Store over any Executor. The pgx/v5 and
// database/sql drivers both return it from GetStore.
type Store struct {
	exec  Executor
	clock clockwork.Clock
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a Store that runs queries on exec unless the context
// carries a transaction (see WithExecutor).
func NewStore(exec Executor) *Store {
	return &Store{exec: exec, clock: clockwork.NewRealClock()}
}

// WithClock replaces the clock used for expiry comparisons.
func (s *Store) WithClock(clock clockwork.Clock) *Store {
	s.clock = clock
	return s
}

// getExecutor returns the executor from context if present, otherwise the default pool executor.
func (s *Store) getExecutor(ctx context.Context) Executor {
	if exec := ExecutorFromContext(ctx); exec != nil {
		return exec
	}
	return s.exec
}

// =============================================================================
// Session operations
// =============================================================================

// CreateSession inserts a session.
func (s *Store) CreateSession(ctx context.Context, sess *storage.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	now := s.clock.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.LastSeenAt.IsZero() {
		sess.LastSeenAt = now
	}

	query := `
		INSERT INTO motoadmin_sessions
			(id, token, user_id, email, name, role, csrf_token, created_at, last_seen_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.getExecutor(ctx).Exec(ctx, query,
		sess.ID, sess.Token, sess.UserID, sess.Email, sess.Name, sess.Role, sess.CSRFToken,
		sess.CreatedAt, sess.LastSeenAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves an unexpired session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	query := `
		SELECT id, token, user_id, email, name, role, csrf_token, created_at, last_seen_at, expires_at
		FROM motoadmin_sessions
		WHERE id = $1 AND expires_at > $2
	`

	var sess storage.Session
	err := s.getExecutor(ctx).QueryRow(ctx, query, id, s.clock.Now()).Scan(
		&sess.ID,
		&sess.Token,
		&sess.UserID,
		&sess.Email,
		&sess.Name,
		&sess.Role,
		&sess.CSRFToken,
		&sess.CreatedAt,
		&sess.LastSeenAt,
		&sess.ExpiresAt,
	)
	if errors.Is(err, ErrNoRows) {
		return nil, storage.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

// TouchSession records activity and extends the expiry.
func (s *Store) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	now := s.clock.Now()
	query := `
		UPDATE motoadmin_sessions
		SET last_seen_at = $2, expires_at = $3
		WHERE id = $1 AND expires_at > $2
	`
	n, err := s.getExecutor(ctx).Exec(ctx, query, id, now, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if n == 0 {
		return storage.ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.getExecutor(ctx).Exec(ctx, `DELETE FROM motoadmin_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before the given time.
func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	n, err := s.getExecutor(ctx).Exec(ctx, `DELETE FROM motoadmin_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(n), nil
}

// =============================================================================
// Audit operations
// =============================================================================

// RecordAudit inserts an audit entry.
func (s *Store) RecordAudit(ctx context.Context, entry *storage.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}
	if entry.Status == "" {
		entry.Status = storage.AuditCompleted
	}

	query := `
		INSERT INTO motoadmin_audit_log (id, actor, action, subject, status, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.getExecutor(ctx).Exec(ctx, query,
		entry.ID, entry.Actor, entry.Action, entry.Subject, entry.Status, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// ListAudit returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]*storage.AuditEntry, error) {
	query := `
		SELECT id, actor, action, subject, status, detail, created_at
		FROM motoadmin_audit_log
		ORDER BY created_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.getExecutor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*storage.AuditEntry{}
	for rows.Next() {
		var e storage.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Subject, &e.Status, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

// DeleteAuditBefore removes entries created before the given time.
func (s *Store) DeleteAuditBefore(ctx context.Context, before time.Time) (int, error) {
	n, err := s.getExecutor(ctx).Exec(ctx, `DELETE FROM motoadmin_audit_log WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit entries: %w", err)
	}
	return int(n), nil
}

// =============================================================================
// Leader election operations
// =============================================================================

// LeaderAttemptElect takes the lease if no row exists or the current one expired.
func (s *Store) LeaderAttemptElect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	now := s.clock.Now()
	query := `
		INSERT INTO motoadmin_leader (name, leader_id, elected_at, expires_at)
		VALUES ('default', $1, $2, $3)
		ON CONFLICT (name) DO UPDATE
			SET leader_id = EXCLUDED.leader_id,
			    elected_at = EXCLUDED.elected_at,
			    expires_at = EXCLUDED.expires_at
			WHERE motoadmin_leader.expires_at <= $2
			   OR motoadmin_leader.leader_id = EXCLUDED.leader_id
	`
	n, err := s.getExecutor(ctx).Exec(ctx, query, params.LeaderID, now, now.Add(params.TTL))
	if err != nil {
		return false, fmt.Errorf("failed to attempt election: %w", err)
	}
	return n > 0, nil
}

// LeaderAttemptReelect renews the lease held by params.LeaderID.
func (s *Store) LeaderAttemptReelect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	now := s.clock.Now()
	query := `
		UPDATE motoadmin_leader
		SET expires_at = $3
		WHERE name = 'default' AND leader_id = $1 AND expires_at > $2
	`
	n, err := s.getExecutor(ctx).Exec(ctx, query, params.LeaderID, now, now.Add(params.TTL))
	if err != nil {
		return false, fmt.Errorf("failed to attempt reelection: %w", err)
	}
	return n > 0, nil
}

// LeaderResign voluntarily gives up leadership.
func (s *Store) LeaderResign(ctx context.Context, leaderID string) error {
	_, err := s.getExecutor(ctx).Exec(ctx,
		`DELETE FROM motoadmin_leader WHERE name = 'default' AND leader_id = $1`, leaderID)
	if err != nil {
		return fmt.Errorf("failed to resign leadership: %w", err)
	}
	return nil
}

// LeaderDeleteExpired removes an expired lease.
func (s *Store) LeaderDeleteExpired(ctx context.Context) (int, error) {
	n, err := s.getExecutor(ctx).Exec(ctx,
		`DELETE FROM motoadmin_leader WHERE expires_at <= $1`, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired leader: %w", err)
	}
	return int(n), nil
}
