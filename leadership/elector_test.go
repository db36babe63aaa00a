package leadership

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/goleak"

	"github.com/youssefsiam38/motoadmin/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingStore wraps a MemoryStore and counts lease calls.
type countingStore struct {
	*storage.MemoryStore
	electCalled   atomic.Int32
	reelectCalled atomic.Int32
	resignCalled  atomic.Int32
	reelectErr    atomic.Value // error
}

func (s *countingStore) LeaderAttemptElect(ctx context.Context, p *storage.LeaderElectParams) (bool, error) {
	s.electCalled.Add(1)
	return s.MemoryStore.LeaderAttemptElect(ctx, p)
}

func (s *countingStore) LeaderAttemptReelect(ctx context.Context, p *storage.LeaderElectParams) (bool, error) {
	s.reelectCalled.Add(1)
	if err, _ := s.reelectErr.Load().(error); err != nil {
		return false, err
	}
	return s.MemoryStore.LeaderAttemptReelect(ctx, p)
}

func (s *countingStore) LeaderResign(ctx context.Context, id string) error {
	s.resignCalled.Add(1)
	return s.MemoryStore.LeaderResign(ctx, id)
}

func newTestElector(t *testing.T, id string, store storage.LeaderStore, clock *clockwork.FakeClock, cb Callbacks) *Elector {
	t.Helper()
	return NewElector(store, id, &Config{
		LeaderTTL:       30 * time.Second,
		ElectionPeriod:  10 * time.Second,
		ReelectionDelay: 5 * time.Second,
		Clock:           clock,
	}, cb)
}

// waitFor polls cond for up to a second.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestElector_StartStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &countingStore{MemoryStore: storage.NewMemoryStore(storage.WithClock(clock))}
	elector := newTestElector(t, "instance-1", store, clock, Callbacks{})
	ctx := context.Background()

	if err := elector.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := elector.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("Start() error = %v, want %v", err, ErrAlreadyStarted)
	}

	waitFor(t, func() bool { return store.electCalled.Load() > 0 }, "expected an election attempt")

	if err := elector.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := elector.Stop(ctx); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Stop() error = %v, want %v", err, ErrNotStarted)
	}
	if store.resignCalled.Load() != 1 {
		t.Errorf("LeaderResign called %d times on stop, want 1", store.resignCalled.Load())
	}
}

func TestElector_BecomesLeaderOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &countingStore{MemoryStore: storage.NewMemoryStore(storage.WithClock(clock))}

	var became atomic.Int32
	elector := newTestElector(t, "instance-1", store, clock, Callbacks{
		OnBecameLeader: func(ctx context.Context) { became.Add(1) },
	})
	ctx := context.Background()

	if err := elector.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer elector.Stop(ctx)

	waitFor(t, elector.IsLeader, "expected to become leader")

	// Two renewals.
	for i := 0; i < 2; i++ {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatal(err)
		}
		clock.Advance(5 * time.Second)
		want := int32(i + 1)
		waitFor(t, func() bool { return store.reelectCalled.Load() >= want }, "expected a renewal")
	}

	if !elector.IsLeader() {
		t.Error("expected to remain leader")
	}
	if became.Load() != 1 {
		t.Errorf("OnBecameLeader called %d times, want 1", became.Load())
	}
}

func TestElector_OnlyOneLeader(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := storage.NewMemoryStore(storage.WithClock(clock))
	ctx := context.Background()

	a := newTestElector(t, "a", store, clock, Callbacks{})
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer a.Stop(ctx)
	waitFor(t, a.IsLeader, "a should lead")

	b := newTestElector(t, "b", store, clock, Callbacks{})
	if err := b.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer b.Stop(ctx)

	// Both loops are waiting on the clock once b has made its first attempt.
	if err := clock.BlockUntilContext(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if b.IsLeader() {
		t.Error("b must not lead while a holds the lease")
	}
}

func TestElector_LosesLeadershipOnRenewalFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &countingStore{MemoryStore: storage.NewMemoryStore(storage.WithClock(clock))}

	var lost atomic.Int32
	elector := newTestElector(t, "instance-1", store, clock, Callbacks{
		OnLostLeadership: func(ctx context.Context) { lost.Add(1) },
	})
	ctx := context.Background()

	if err := elector.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer elector.Stop(ctx)
	waitFor(t, elector.IsLeader, "expected to become leader")

	store.reelectErr.Store(errors.New("connection reset"))
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Second)

	waitFor(t, func() bool { return !elector.IsLeader() }, "expected to lose leadership")
	if lost.Load() != 1 {
		t.Errorf("OnLostLeadership called %d times, want 1", lost.Load())
	}
}

func TestElector_Resign(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &countingStore{MemoryStore: storage.NewMemoryStore(storage.WithClock(clock))}

	var lost atomic.Int32
	elector := newTestElector(t, "instance-1", store, clock, Callbacks{
		OnLostLeadership: func(ctx context.Context) { lost.Add(1) },
	})
	ctx := context.Background()

	if err := elector.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, elector.IsLeader, "expected to become leader")

	if err := elector.Resign(ctx); err != nil {
		t.Fatalf("Resign() error = %v", err)
	}
	if elector.IsLeader() {
		t.Error("expected not to be leader after resign")
	}
	if lost.Load() != 1 {
		t.Errorf("OnLostLeadership called %d times, want 1", lost.Load())
	}

	if err := elector.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// Stop after resign does not resign again.
	if store.resignCalled.Load() != 1 {
		t.Errorf("LeaderResign called %d times, want 1", store.resignCalled.Load())
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.LeaderTTL != DefaultLeaderTTL {
		t.Errorf("LeaderTTL = %v, want %v", config.LeaderTTL, DefaultLeaderTTL)
	}
	if config.ElectionPeriod != DefaultElectionPeriod {
		t.Errorf("ElectionPeriod = %v, want %v", config.ElectionPeriod, DefaultElectionPeriod)
	}
	if config.ReelectionDelay != DefaultReelectionDelay {
		t.Errorf("ReelectionDelay = %v, want %v", config.ReelectionDelay, DefaultReelectionDelay)
	}
}
