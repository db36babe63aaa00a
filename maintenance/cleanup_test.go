package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/youssefsiam38/motoadmin/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// cleanupMockStore implements the storage.Store methods cleanup uses.
type cleanupMockStore struct {
	storage.Store

	mu               sync.Mutex
	sessionsBefore   []time.Time
	auditBefore      []time.Time
	deleteSessionsN  int
	deleteSessionErr error
	deleteAuditN     int
	leaderN          int
}

func (m *cleanupMockStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsBefore = append(m.sessionsBefore, before)
	return m.deleteSessionsN, m.deleteSessionErr
}

func (m *cleanupMockStore) DeleteAuditBefore(ctx context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auditBefore = append(m.auditBefore, before)
	return m.deleteAuditN, nil
}

func (m *cleanupMockStore) LeaderDeleteExpired(ctx context.Context) (int, error) {
	return m.leaderN, nil
}

func (m *cleanupMockStore) passes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessionsBefore)
}

func TestCleanup_RunOnce(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	store := &cleanupMockStore{deleteSessionsN: 3, deleteAuditN: 7, leaderN: 1}
	cleanup := NewCleanup(store, &CleanupConfig{AuditRetention: 24 * time.Hour, Clock: clock})

	result := cleanup.RunOnce(context.Background())

	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.ExpiredSessionsDeleted)
	assert.Equal(t, 7, result.AuditEntriesDeleted)
	assert.Equal(t, 1, result.ExpiredLeadersCleaned)
	assert.True(t, result.Removed())
	assert.Equal(t, []time.Time{clock.Now()}, store.sessionsBefore)
	assert.Equal(t, []time.Time{clock.Now().Add(-24 * time.Hour)}, store.auditBefore)
}

func TestCleanup_NegativeRetentionKeepsAudit(t *testing.T) {
	store := &cleanupMockStore{}
	cleanup := NewCleanup(store, &CleanupConfig{AuditRetention: -1})

	result := cleanup.RunOnce(context.Background())

	assert.False(t, result.Removed())
	assert.Empty(t, store.auditBefore)
}

func TestCleanup_CollectsErrors(t *testing.T) {
	errDB := errors.New("db down")
	store := &cleanupMockStore{deleteSessionErr: errDB, deleteAuditN: 2}

	var reported []error
	cleanup := NewCleanup(store, &CleanupConfig{OnError: func(err error) { reported = append(reported, err) }})
	cleanup.runCleanup(context.Background())

	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], errDB)
}

func TestCleanup_StartStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &cleanupMockStore{deleteSessionsN: 1}

	results := make(chan *CleanupResult, 10)
	cleanup := NewCleanup(store, &CleanupConfig{
		Interval: time.Minute,
		Clock:    clock,
		OnCleanup: func(r *CleanupResult) {
			results <- r
		},
	})

	ctx := context.Background()
	require.NoError(t, cleanup.Start(ctx))
	assert.ErrorIs(t, cleanup.Start(ctx), ErrAlreadyStarted)
	assert.True(t, cleanup.IsRunning())

	// First pass runs immediately.
	select {
	case <-results:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not run on start")
	}

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	select {
	case <-results:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not run on tick")
	}
	assert.GreaterOrEqual(t, store.passes(), 2)

	require.NoError(t, cleanup.Stop(ctx))
	assert.False(t, cleanup.IsRunning())
	assert.ErrorIs(t, cleanup.Stop(ctx), ErrNotStarted)
}

func TestCleanup_Restart(t *testing.T) {
	store := &cleanupMockStore{}
	cleanup := NewCleanup(store, &CleanupConfig{Interval: time.Hour, Clock: clockwork.NewFakeClock()})
	ctx := context.Background()

	require.NoError(t, cleanup.Start(ctx))
	require.NoError(t, cleanup.Stop(ctx))
	require.NoError(t, cleanup.Start(ctx))
	require.NoError(t, cleanup.Stop(ctx))
}
