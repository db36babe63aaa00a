// Package redisstore implements storage.Store on Redis.
//
// Sessions are stored as JSON strings whose key TTL matches the session
// expiry, so Redis itself evicts expired sessions. The audit log is a
// capped list, newest first. The leader lease is a single key set with NX.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/youssefsiam38/motoadmin/storage"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "motoadmin:"

// Config holds configuration for the Redis store.
type Config struct {
	// Prefix is prepended to every key.
	// Default: "motoadmin:"
	Prefix string

	// AuditCapacity bounds the audit list length.
	// Default: storage.DefaultAuditCapacity
	AuditCapacity int

	// Clock is used for expiry arithmetic (optional).
	Clock clockwork.Clock
}

// Store implements storage.Store using go-redis.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	cap    int
	clock  clockwork.Clock
}

var _ storage.Store = (*Store)(nil)

// reelectScript extends the lease only when the caller still holds it.
var reelectScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// resignScript deletes the lease only when the caller holds it.
var resignScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// trimAuditScript drops ARGV[1] and everything after it. The list only
// grows at the head, so the entry is located again by value at run time.
var trimAuditScript = redis.NewScript(`
local idx = redis.call("LPOS", KEYS[1], ARGV[1])
if not idx then
	return 0
end
local n = redis.call("LLEN", KEYS[1]) - idx
if idx == 0 then
	redis.call("DEL", KEYS[1])
else
	redis.call("LTRIM", KEYS[1], 0, idx - 1)
end
return n
`)

// New creates a Redis-backed store.
func New(rdb redis.UniversalClient, cfg *Config) *Store {
	if cfg == nil {
		cfg = &Config{}
	}
	s := &Store{
		rdb:    rdb,
		prefix: cfg.Prefix,
		cap:    cfg.AuditCapacity,
		clock:  cfg.Clock,
	}
	if s.prefix == "" {
		s.prefix = DefaultPrefix
	}
	if s.cap <= 0 {
		s.cap = storage.DefaultAuditCapacity
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s
}

// Open parses a redis:// URL and returns a store plus the underlying client.
func Open(url string, cfg *Config) (*Store, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	return New(rdb, cfg), rdb, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) sessionKey(id string) string { return s.prefix + "session:" + id }
func (s *Store) auditKey() string            { return s.prefix + "audit" }
func (s *Store) leaderKey() string           { return s.prefix + "leader" }

// CreateSession stores sess with a TTL matching its expiry.
func (s *Store) CreateSession(ctx context.Context, sess *storage.Session) error {
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
	return s.putSession(ctx, &cp, now)
}

func (s *Store) putSession(ctx context.Context, sess *storage.Session, now time.Time) error {
	ttl := sess.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return s.DeleteSession(ctx, sess.ID)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetSession loads a session.
func (s *Store) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	data, err := s.rdb.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var sess storage.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if sess.Expired(s.clock.Now()) {
		return nil, storage.ErrSessionNotFound
	}
	return &sess, nil
}

// TouchSession rewrites the session with a new expiry. The write uses
// SET XX, so a session deleted after it was read stays deleted.
func (s *Store) TouchSession(ctx context.Context, id string, expiresAt time.Time) error {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	sess.LastSeenAt = now
	sess.ExpiresAt = expiresAt

	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return s.DeleteSession(ctx, id)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	err = s.rdb.SetArgs(ctx, s.sessionKey(id), data, redis.SetArgs{Mode: "XX", TTL: ttl}).Err()
	if errors.Is(err, redis.Nil) {
		return storage.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions is a no-op; Redis expires session keys itself.
func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	return 0, nil
}

// RecordAudit pushes an entry to the head of the capped list.
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
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.auditKey(), data)
	pipe.LTrim(ctx, s.auditKey(), 0, int64(s.cap-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// ListAudit returns up to limit entries, newest first.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]*storage.AuditEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := s.rdb.LRange(ctx, s.auditKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return decodeAudit(raw)
}

// DeleteAuditBefore trims the tail of entries created before the given time.
func (s *Store) DeleteAuditBefore(ctx context.Context, before time.Time) (int, error) {
	raw, err := s.rdb.LRange(ctx, s.auditKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	entries, err := decodeAudit(raw)
	if err != nil {
		return 0, err
	}

	// The list is newest first, so everything from the first old entry on is old.
	cut := -1
	for i, e := range entries {
		if e.CreatedAt.Before(before) {
			cut = i
			break
		}
	}
	if cut < 0 {
		return 0, nil
	}
	n, err := trimAuditScript.Run(ctx, s.rdb, []string{s.auditKey()}, raw[cut]).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to trim audit entries: %w", err)
	}
	return n, nil
}

func decodeAudit(raw []string) ([]*storage.AuditEntry, error) {
	entries := make([]*storage.AuditEntry, 0, len(raw))
	for _, r := range raw {
		var e storage.AuditEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

// LeaderAttemptElect takes the lease with SET NX.
func (s *Store) LeaderAttemptElect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.leaderKey(), params.LeaderID, params.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to elect leader: %w", err)
	}
	if ok {
		return true, nil
	}
	// Already holding it counts as elected.
	return s.LeaderAttemptReelect(ctx, params)
}

// LeaderAttemptReelect extends the lease held by params.LeaderID.
func (s *Store) LeaderAttemptReelect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	n, err := reelectScript.Run(ctx, s.rdb, []string{s.leaderKey()}, params.LeaderID, params.TTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to reelect leader: %w", err)
	}
	return n == 1, nil
}

// LeaderResign releases the lease if held by leaderID.
func (s *Store) LeaderResign(ctx context.Context, leaderID string) error {
	if err := resignScript.Run(ctx, s.rdb, []string{s.leaderKey()}, leaderID).Err(); err != nil {
		return fmt.Errorf("failed to resign leadership: %w", err)
	}
	return nil
}

// LeaderDeleteExpired is a no-op; the lease key carries its own TTL.
func (s *Store) LeaderDeleteExpired(ctx context.Context) (int, error) {
	return 0, nil
}
