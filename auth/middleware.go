package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/storage"
)

// LoginPath is where unauthenticated admins are sent.
const LoginPath = "/login"

type sessionContextKey struct{}

// WithSession returns a context carrying sess and its bearer token, so
// motoadmin.Client calls made with it are authenticated.
func WithSession(ctx context.Context, sess *storage.Session) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey{}, sess)
	return motoadmin.WithToken(ctx, sess.Token)
}

// SessionFromContext returns the session stored by RequireAdmin, or nil.
func SessionFromContext(ctx context.Context) *storage.Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*storage.Session)
	return sess
}

// LoginURL returns the login page address that comes back to next.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// RequireAdmin redirects requests without a valid admin session to the
// login page. Requests that pass carry the session (SessionFromContext) and
// the bearer token (motoadmin.TokenFromContext) in their context.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := m.authenticate(w, r)
		if !ok {
			http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireAdminJSON is RequireAdmin for JSON endpoints: it answers 401
// instead of redirecting.
func (m *Manager) RequireAdminJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := m.authenticate(w, r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"admin session required"}}` + "\n"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func (m *Manager) authenticate(w http.ResponseWriter, r *http.Request) (*storage.Session, bool) {
	sess, err := m.Current(r)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.logWarn("session lookup failed", "error", err)
		}
		return nil, false
	}
	m.touch(w, r, sess)
	return sess, true
}
