package hooks

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
}

func TestOnLogin(t *testing.T) {
	r := NewRegistry()
	var captured *LoginEvent

	r.OnLogin(func(ctx context.Context, event *LoginEvent) error {
		captured = event
		return nil
	})

	event := &LoginEvent{Email: "admin@example.com", UserID: "u1"}
	if err := r.TriggerLogin(context.Background(), event); err != nil {
		t.Errorf("TriggerLogin returned error: %v", err)
	}
	if captured != event {
		t.Error("hook did not receive the event")
	}
}

func TestOnLogout(t *testing.T) {
	r := NewRegistry()
	called := false

	r.OnLogout(func(ctx context.Context, event *LogoutEvent) error {
		called = true
		return nil
	})

	if err := r.TriggerLogout(context.Background(), &LogoutEvent{Email: "admin@example.com"}); err != nil {
		t.Errorf("TriggerLogout returned error: %v", err)
	}
	if !called {
		t.Error("hook was not called")
	}
}

func TestOnMutation(t *testing.T) {
	r := NewRegistry()
	var action, subject string

	r.OnMutation(func(ctx context.Context, event *MutationEvent) error {
		action, subject = event.Action, event.Subject
		return nil
	})

	err := r.TriggerMutation(context.Background(), &MutationEvent{
		Actor: "admin@example.com", Action: ActionDeleteMotorcycle, Subject: "Monster",
	})
	if err != nil {
		t.Errorf("TriggerMutation returned error: %v", err)
	}
	if action != ActionDeleteMotorcycle || subject != "Monster" {
		t.Errorf("got action=%q subject=%q", action, subject)
	}
}

func TestMultipleHooks(t *testing.T) {
	r := NewRegistry()
	callOrder := []int{}

	for i := 1; i <= 3; i++ {
		r.OnMutation(func(ctx context.Context, event *MutationEvent) error {
			callOrder = append(callOrder, i)
			return nil
		})
	}

	if err := r.TriggerMutation(context.Background(), &MutationEvent{}); err != nil {
		t.Errorf("TriggerMutation returned error: %v", err)
	}

	if len(callOrder) != 3 {
		t.Fatalf("expected 3 hooks to be called, got %d", len(callOrder))
	}
	for i, v := range callOrder {
		if v != i+1 {
			t.Errorf("expected call order %d at index %d, got %d", i+1, i, v)
		}
	}
}

func TestHookErrorDoesNotStopOthers(t *testing.T) {
	r := NewRegistry()
	called := []int{}
	firstErr := errors.New("first")

	r.OnLogin(func(ctx context.Context, event *LoginEvent) error {
		called = append(called, 1)
		return firstErr
	})
	r.OnLogin(func(ctx context.Context, event *LoginEvent) error {
		called = append(called, 2)
		return errors.New("second")
	})
	r.OnLogin(func(ctx context.Context, event *LoginEvent) error {
		called = append(called, 3)
		return nil
	})

	err := r.TriggerLogin(context.Background(), &LoginEvent{})
	if !errors.Is(err, firstErr) {
		t.Errorf("expected error %v, got %v", firstErr, err)
	}
	if len(called) != 3 {
		t.Errorf("expected all 3 hooks to run, got %d", len(called))
	}
}

func TestConcurrentRegistrationAndTrigger(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	var mu sync.Mutex
	calls := 0

	for i := 0; i < 10; i++ {
		r.OnMutation(func(ctx context.Context, event *MutationEvent) error {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil
		})
	}

	wg.Add(100)
	for i := 0; i < 50; i++ {
		go func() {
			defer wg.Done()
			r.OnMutation(func(ctx context.Context, event *MutationEvent) error { return nil })
		}()
		go func() {
			defer wg.Done()
			_ = r.TriggerMutation(context.Background(), &MutationEvent{})
		}()
	}
	wg.Wait()

	if calls != 500 {
		t.Errorf("expected 500 calls from the pre-registered hooks, got %d", calls)
	}
}
