package motoadmin

import (
	"context"
	"errors"
)

// tokenContextKey is the context key for storing the admin bearer token.
type tokenContextKey struct{}

// ErrNoToken is returned when TokenFromContextSafely is called
// but no token exists in context.
var ErrNoToken = errors.New("motoadmin: no bearer token in context")

// WithToken returns a context carrying the bearer token that Client
// attaches to outgoing API requests.
//
// Example:
//
//	ctx := motoadmin.WithToken(r.Context(), session.Token)
//	page, err := client.ListMotorcycles(ctx, motoadmin.ListParams{Page: 1})
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the bearer token stored in ctx, or "" if none.
func TokenFromContext(ctx context.Context) string {
	token, _ := TokenFromContextSafely(ctx)
	return token
}

// TokenFromContextSafely returns the bearer token stored in ctx.
// Unlike TokenFromContext, it reports a missing or empty token as an error.
func TokenFromContextSafely(ctx context.Context) (string, error) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// StripToken creates a new context without the bearer token while
// preserving deadline, cancellation, and other values.
// Login uses it so a stale token never leaks into the credential exchange.
func StripToken(ctx context.Context) context.Context {
	return &tokenStrippedContext{ctx}
}

// tokenStrippedContext wraps a context to hide the token value.
type tokenStrippedContext struct {
	context.Context
}

// Value returns nil for the token key, delegating other keys to the parent.
func (c *tokenStrippedContext) Value(key any) any {
	if _, ok := key.(tokenContextKey); ok {
		return nil
	}
	return c.Context.Value(key)
}
