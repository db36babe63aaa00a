package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultAuditCapacity bounds how many audit entries MemoryStore keeps.
const DefaultAuditCapacity = 1000

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	clock    clockwork.Clock
	capacity int

	mu       sync.RWMutex
	sessions map[string]*Session
	audit    []*AuditEntry // oldest first

	leaderID      string
	leaderExpires time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock used for expiry checks.
func WithClock(clock clockwork.Clock) MemoryOption {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// WithAuditCapacity bounds the number of retained audit entries.
func WithAuditCapacity(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		clock:    clockwork.NewRealClock(),
		capacity: DefaultAuditCapacity,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Store = (*MemoryStore)(nil)

// CreateSession stores a copy of sess.
func (s *MemoryStore) CreateSession(ctx context.Context, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	cp := *sess
	now := s.clock.Now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	if cp.LastSeenAt.IsZero() {
		cp.LastSeenAt = now
	}

	s.mu.Lock()
	s.sessions[cp.ID] = &cp
	s.mu.Unlock()
	return nil
}

// GetSession returns a copy of the session.
func (s *MemoryStore) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Expired(s.clock.Now()) {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// TouchSession updates last-seen and expiry.
func (s *MemoryStore) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	now := s.clock.Now()
	if !ok || sess.Expired(now) {
		return ErrSessionNotFound
	}
	sess.LastSeenAt = now
	sess.ExpiresAt = expiresAt
	return nil
}

// DeleteSession removes the session.
func (s *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// DeleteExpiredSessions removes sessions whose expiry is before the given time.
func (s *MemoryStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.ExpiresAt.Before(before) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// RecordAudit appends an entry, dropping the oldest beyond capacity.
func (s *MemoryStore) RecordAudit(ctx context.Context, entry *AuditEntry) error {
	cp := *entry
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.clock.Now()
	}
	if cp.Status == "" {
		cp.Status = AuditCompleted
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, &cp)
	if over := len(s.audit) - s.capacity; over > 0 {
		s.audit = slices.Delete(s.audit, 0, over)
	}
	entry.ID, entry.CreatedAt, entry.Status = cp.ID, cp.CreatedAt, cp.Status
	return nil
}

// ListAudit returns up to limit entries, newest first.
func (s *MemoryStore) ListAudit(ctx context.Context, limit int) ([]*AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.audit) {
		limit = len(s.audit)
	}
	out := make([]*AuditEntry, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.audit[i]
		out = append(out, &cp)
	}
	return out, nil
}

// DeleteAuditBefore removes entries created before the given time.
func (s *MemoryStore) DeleteAuditBefore(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.audit[:0]
	for _, e := range s.audit {
		if !e.CreatedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	n := len(s.audit) - len(kept)
	clear(s.audit[len(kept):])
	s.audit = kept
	return n, nil
}

// LeaderAttemptElect takes the lease if free or expired.
func (s *MemoryStore) LeaderAttemptElect(ctx context.Context, params *LeaderElectParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.leaderID != "" && s.leaderID != params.LeaderID && now.Before(s.leaderExpires) {
		return false, nil
	}
	s.leaderID = params.LeaderID
	s.leaderExpires = now.Add(params.TTL)
	return true, nil
}

// LeaderAttemptReelect extends the lease held by params.LeaderID.
func (s *MemoryStore) LeaderAttemptReelect(ctx context.Context, params *LeaderElectParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.leaderID != params.LeaderID || !now.Before(s.leaderExpires) {
		return false, nil
	}
	s.leaderExpires = now.Add(params.TTL)
	return true, nil
}

// LeaderResign releases the lease if held by leaderID.
func (s *MemoryStore) LeaderResign(ctx context.Context, leaderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leaderID == leaderID {
		s.leaderID = ""
		s.leaderExpires = time.Time{}
	}
	return nil
}

// LeaderDeleteExpired clears an expired lease.
func (s *MemoryStore) LeaderDeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leaderID != "" && !s.clock.Now().Before(s.leaderExpires) {
		s.leaderID = ""
		s.leaderExpires = time.Time{}
		return 1, nil
	}
	return 0, nil
}
