// Package storetest holds behaviour tests shared by every storage.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youssefsiam38/motoadmin/storage"
)

// Run exercises store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("SessionLifecycle", func(t *testing.T) {
		testSessionLifecycle(t, newStore(t))
	})
	t.Run("ExpiredSessions", func(t *testing.T) {
		testExpiredSessions(t, newStore(t))
	})
	t.Run("Audit", func(t *testing.T) {
		testAudit(t, newStore(t))
	})
	t.Run("Leader", func(t *testing.T) {
		testLeader(t, newStore(t))
	})
}

func testSessionLifecycle(t *testing.T, store storage.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	sess := &storage.Session{
		ID:        "sess-1",
		Token:     "tok-1",
		UserID:    "u1",
		Email:     "admin@example.com",
		Name:      "Admin",
		Role:      "admin",
		CSRFToken: "csrf",
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.CreateSession(ctx, sess))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, "admin@example.com", got.Email)
	assert.Equal(t, "csrf", got.CSRFToken)
	assert.WithinDuration(t, now.Add(time.Hour), got.ExpiresAt, time.Second)

	require.NoError(t, store.TouchSession(ctx, "sess-1", now.Add(2*time.Hour)))
	got, err = store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(2*time.Hour), got.ExpiresAt, time.Second)

	require.NoError(t, store.DeleteSession(ctx, "sess-1"))
	_, err = store.GetSession(ctx, "sess-1")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.ErrorIs(t, store.TouchSession(ctx, "sess-1", now.Add(time.Hour)), storage.ErrSessionNotFound)
}

func testExpiredSessions(t *testing.T, store storage.Store) {
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateSession(ctx, &storage.Session{
		ID: "live", Token: "t", ExpiresAt: now.Add(time.Hour),
	}))
	// Expired a moment ago; GetSession must hide it even before cleanup.
	require.NoError(t, store.CreateSession(ctx, &storage.Session{
		ID: "stale", Token: "t", ExpiresAt: now.Add(-time.Minute),
	}))

	_, err := store.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = store.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)

	_, err = store.GetSession(ctx, "live")
	assert.NoError(t, err)
}

func testAudit(t *testing.T, store storage.Store) {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	actions := []string{"Login", "Add motorcycle", "Verify user"}
	for i, action := range actions {
		entry := &storage.AuditEntry{
			Actor:     "admin@example.com",
			Action:    action,
			Subject:   "subject",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.RecordAudit(ctx, entry))
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, storage.AuditCompleted, entry.Status)
	}

	entries, err := store.ListAudit(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Verify user", entries[0].Action)
	assert.Equal(t, "Add motorcycle", entries[1].Action)

	n, err := store.DeleteAuditBefore(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err = store.ListAudit(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Verify user", entries[0].Action)
}

func testLeader(t *testing.T, store storage.Store) {
	ctx := context.Background()
	a := &storage.LeaderElectParams{LeaderID: "a", TTL: time.Minute}
	b := &storage.LeaderElectParams{LeaderID: "b", TTL: time.Minute}

	ok, err := store.LeaderAttemptElect(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.LeaderAttemptElect(ctx, b)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.LeaderAttemptReelect(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.LeaderAttemptReelect(ctx, b)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.LeaderResign(ctx, "a"))

	ok, err = store.LeaderAttemptElect(ctx, b)
	require.NoError(t, err)
	assert.True(t, ok)
}
