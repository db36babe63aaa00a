package redisstore

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youssefsiam38/motoadmin/internal/testutil"
	"github.com/youssefsiam38/motoadmin/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, _ := newTestClient(t)
	return store
}

func newTestClient(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	testutil.RequireIntegration(t)
	url := testutil.RequireEnv(t, "REDIS_URL")

	prefix := "motoadmin-test:" + t.Name() + ":"
	store, rdb, err := Open(url, &Config{Prefix: prefix, AuditCapacity: 3})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
		rdb.Close()
	})
	require.NoError(t, store.Ping(context.Background()))
	return store, rdb
}

// afterCommandHook runs fn once, right after the first command named name
// completes on the client it is added to.
type afterCommandHook struct {
	name  string
	fired atomic.Bool
	fn    func(ctx context.Context)
}

func (h *afterCommandHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *afterCommandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if strings.EqualFold(cmd.Name(), h.name) && h.fired.CompareAndSwap(false, true) {
			h.fn(ctx)
		}
		return err
	}
}

func (h *afterCommandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestIntegration_RedisStore_Sessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := &storage.Session{ID: "s1", Token: "tok", Role: "admin", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.CreateSession(ctx, sess))

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	require.NoError(t, store.TouchSession(ctx, "s1", time.Now().Add(2*time.Hour)))
	require.NoError(t, store.DeleteSession(ctx, "s1"))

	_, err = store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestIntegration_RedisStore_Audit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, action := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.RecordAudit(ctx, &storage.AuditEntry{
			Actor: "admin@example.com", Action: action, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.ListAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "d", entries[0].Action)

	n, err := store.DeleteAuditBefore(ctx, base.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err = store.ListAudit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestIntegration_RedisStore_TouchDoesNotReviveDeletedSession(t *testing.T) {
	store, rdb := newTestClient(t)
	ctx := context.Background()

	sess := &storage.Session{ID: "s1", Token: "tok", Role: "admin", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.CreateSession(ctx, sess))

	// Logout lands between the touch's read and its write.
	rdb.AddHook(&afterCommandHook{name: "get", fn: func(ctx context.Context) {
		require.NoError(t, store.DeleteSession(ctx, "s1"))
	}})

	err := store.TouchSession(ctx, "s1", time.Now().Add(2*time.Hour))
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	_, err = store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestIntegration_RedisStore_TrimKeepsConcurrentAudit(t *testing.T) {
	store, rdb := newTestClient(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, action := range []string{"old", "kept"} {
		require.NoError(t, store.RecordAudit(ctx, &storage.AuditEntry{
			Actor: "admin@example.com", Action: action, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// A new entry is pushed after the trim has read the list.
	rdb.AddHook(&afterCommandHook{name: "lrange", fn: func(ctx context.Context) {
		require.NoError(t, store.RecordAudit(ctx, &storage.AuditEntry{Actor: "admin@example.com", Action: "fresh"}))
	}})

	n, err := store.DeleteAuditBefore(ctx, base.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := store.ListAudit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "fresh", entries[0].Action)
	assert.Equal(t, "kept", entries[1].Action)
}

func TestIntegration_RedisStore_Leader(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := &storage.LeaderElectParams{LeaderID: "a", TTL: 10 * time.Second}
	b := &storage.LeaderElectParams{LeaderID: "b", TTL: 10 * time.Second}

	ok, err := store.LeaderAttemptElect(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.LeaderAttemptElect(ctx, b)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.LeaderAttemptReelect(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.LeaderResign(ctx, "a"))
	ok, err = store.LeaderAttemptElect(ctx, b)
	require.NoError(t, err)
	assert.True(t, ok)
}
