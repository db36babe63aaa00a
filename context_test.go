package motoadmin

import (
	"context"
	"errors"
	"testing"
	"time"
)

type otherKey struct{}

func TestTokenFromContext(t *testing.T) {
	t.Run("returns token when present", func(t *testing.T) {
		ctx := WithToken(context.Background(), "tok-123")

		if got := TokenFromContext(ctx); got != "tok-123" {
			t.Errorf("got %q, want %q", got, "tok-123")
		}
	})

	t.Run("returns empty string when absent", func(t *testing.T) {
		if got := TokenFromContext(context.Background()); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

func TestTokenFromContextSafely(t *testing.T) {
	t.Run("returns token when present", func(t *testing.T) {
		ctx := WithToken(context.Background(), "tok-123")

		token, err := TokenFromContextSafely(ctx)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if token != "tok-123" {
			t.Errorf("got %q, want %q", token, "tok-123")
		}
	})

	t.Run("returns error when no token in context", func(t *testing.T) {
		_, err := TokenFromContextSafely(context.Background())
		if !errors.Is(err, ErrNoToken) {
			t.Errorf("got error %v, want %v", err, ErrNoToken)
		}
	})

	t.Run("treats empty token as missing", func(t *testing.T) {
		ctx := WithToken(context.Background(), "")

		_, err := TokenFromContextSafely(ctx)
		if !errors.Is(err, ErrNoToken) {
			t.Errorf("got error %v, want %v", err, ErrNoToken)
		}
	})
}

func TestStripToken(t *testing.T) {
	t.Run("hides the token", func(t *testing.T) {
		ctx := WithToken(context.Background(), "tok-123")

		stripped := StripToken(ctx)
		if got := TokenFromContext(stripped); got != "" {
			t.Errorf("expected no token after strip, got %q", got)
		}
	})

	t.Run("preserves other values", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), otherKey{}, "kept")
		ctx = WithToken(ctx, "tok-123")

		stripped := StripToken(ctx)
		if got := stripped.Value(otherKey{}); got != "kept" {
			t.Errorf("got %v, want %q", got, "kept")
		}
	})

	t.Run("preserves cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(WithToken(context.Background(), "tok"))
		stripped := StripToken(ctx)
		cancel()

		select {
		case <-stripped.Done():
		case <-time.After(time.Second):
			t.Fatal("stripped context was not cancelled")
		}
		if !errors.Is(stripped.Err(), context.Canceled) {
			t.Errorf("got %v, want context.Canceled", stripped.Err())
		}
	})
}
