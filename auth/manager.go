package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/hooks"
	"github.com/youssefsiam38/motoadmin/storage"
)

// Cookie session keys.
const (
	sessionIDKey = "sid"
	csrfKey      = "csrf"
)

// Flash texts set by the Manager.
const (
	MsgLoginSuccessful = "Login Successful!"
	MsgSessionExpired  = "Your session has ended. Please log in again."
)

// Authenticator exchanges credentials for an API token.
// *motoadmin.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*motoadmin.LoginResult, error)
}

// Manager owns the admin session lifecycle: login, lookup, sliding expiry,
// logout, flashes and CSRF tokens.
type Manager struct {
	authn   Authenticator
	store   storage.SessionStore
	cookies *sessions.CookieStore
	limiter *LoginLimiter
	config  *Config
}

// NewManager creates a session manager.
func NewManager(authn Authenticator, store storage.SessionStore, cfg *Config) (*Manager, error) {
	if authn == nil || store == nil {
		return nil, fmt.Errorf("%w: authenticator and session store are required", ErrInvalidConfig)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	cookies := sessions.NewCookieStore([]byte(c.SessionSecret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(c.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		authn:   authn,
		store:   store,
		cookies: cookies,
		limiter: NewLoginLimiter(c.LoginRate, c.LoginBurst, c.Clock),
		config:  &c,
	}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.config.CookieName
}

// Login validates the credentials, exchanges them for a token and starts a
// session. The returned error is a *motoadmin.ValidationError for form
// problems, ErrRateLimited when the client is throttled, or the API error.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, email, password string) (*storage.Session, error) {
	ctx := r.Context()
	addr := clientAddr(r)
	email = strings.TrimSpace(email)

	if err := ValidateCredentials(email, password); err != nil {
		m.triggerLogin(ctx, &hooks.LoginEvent{Email: email, RemoteAddr: addr, Err: err})
		return nil, err
	}
	if !m.limiter.Allow(addr) {
		m.triggerLogin(ctx, &hooks.LoginEvent{Email: email, RemoteAddr: addr, Throttled: true, Err: ErrRateLimited})
		return nil, ErrRateLimited
	}

	result, err := m.authn.Login(ctx, email, password)
	if err == nil && (result == nil || result.Token == "" || !result.User.IsAdmin()) {
		err = motoadmin.NewAPIError("login", 0, motoadmin.ErrNotAdmin.Error(), motoadmin.ErrNotAdmin)
	}
	if err != nil {
		m.triggerLogin(ctx, &hooks.LoginEvent{Email: email, RemoteAddr: addr, Err: err})
		return nil, err
	}

	csrf, err := newToken()
	if err != nil {
		return nil, err
	}
	now := m.config.Clock.Now()
	sess := &storage.Session{
		ID:         uuid.NewString(),
		Token:      result.Token,
		UserID:     result.User.ID,
		Email:      result.User.Email,
		Name:       result.User.Name,
		Role:       string(result.User.Role),
		CSRFToken:  csrf,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(m.config.SessionTTL),
	}
	if sess.Email == "" {
		sess.Email = email
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	cs := m.cookie(r)
	if old, ok := cs.Values[sessionIDKey].(string); ok && old != "" {
		if err := m.store.DeleteSession(ctx, old); err != nil {
			m.logWarn("failed to delete previous session", "error", err)
		}
	}
	cs.Values[sessionIDKey] = sess.ID
	delete(cs.Values, csrfKey)
	cs.AddFlash(Flash{Type: FlashSuccess, Message: MsgLoginSuccessful})
	if err := cs.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session cookie: %w", err)
	}

	m.triggerLogin(ctx, &hooks.LoginEvent{
		Email:      sess.Email,
		UserID:     sess.UserID,
		SessionID:  sess.ID,
		RemoteAddr: addr,
	})
	return sess, nil
}

// Current returns the admin session for the request. It returns
// ErrNoSession when the cookie is missing, the session is unknown or
// expired, or the stored user is not an admin.
func (m *Manager) Current(r *http.Request) (*storage.Session, error) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		return sess, nil
	}

	id, _ := m.cookie(r).Values[sessionIDKey].(string)
	if id == "" {
		return nil, ErrNoSession
	}
	sess, err := m.store.GetSession(r.Context(), id)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !m.valid(sess) {
		if err := m.store.DeleteSession(r.Context(), id); err != nil {
			m.logWarn("failed to delete invalid session", "error", err)
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

// valid reports whether sess still grants console access.
func (m *Manager) valid(sess *storage.Session) bool {
	return sess != nil &&
		sess.Token != "" &&
		!sess.Expired(m.config.Clock.Now()) &&
		strings.EqualFold(sess.Role, string(motoadmin.RoleAdmin))
}

// touch slides the session expiry forward, at most once per TouchInterval.
// The cookie is re-issued too so its MaxAge follows the stored expiry.
func (m *Manager) touch(w http.ResponseWriter, r *http.Request, sess *storage.Session) {
	now := m.config.Clock.Now()
	if now.Sub(sess.LastSeenAt) < m.config.TouchInterval {
		return
	}
	expiresAt := now.Add(m.config.SessionTTL)
	if err := m.store.TouchSession(r.Context(), sess.ID, expiresAt); err != nil {
		m.logWarn("failed to extend session", "error", err)
		return
	}
	sess.LastSeenAt = now
	sess.ExpiresAt = expiresAt

	if err := m.cookie(r).Save(r, w); err != nil {
		m.logWarn("failed to refresh session cookie", "error", err)
	}
}

// Logout ends the request's session, if any.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	return m.end(w, r, "", nil)
}

// Destroy ends the request's session because it can no longer be used,
// for example when the API rejected its token. The admin sees a flash
// explaining why on the login page.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, reason string) error {
	return m.end(w, r, reason, &Flash{Type: FlashError, Message: MsgSessionExpired})
}

func (m *Manager) end(w http.ResponseWriter, r *http.Request, reason string, flash *Flash) error {
	ctx := r.Context()
	cs := m.cookie(r)
	id, _ := cs.Values[sessionIDKey].(string)

	var email string
	if sess := SessionFromContext(ctx); sess != nil {
		email = sess.Email
		if id == "" {
			id = sess.ID
		}
	} else if id != "" {
		if sess, err := m.store.GetSession(ctx, id); err == nil {
			email = sess.Email
		}
	}

	if id != "" {
		if err := m.store.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	delete(cs.Values, sessionIDKey)
	delete(cs.Values, csrfKey)
	if flash != nil {
		cs.AddFlash(*flash)
	}
	if err := cs.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}

	if id != "" && m.config.Hooks != nil {
		if err := m.config.Hooks.TriggerLogout(ctx, &hooks.LogoutEvent{Email: email, SessionID: id, Reason: reason}); err != nil {
			m.logWarn("logout hook failed", "error", err)
		}
	}
	return nil
}

// cookie returns the signed cookie session. A cookie that fails to decode
// (tampered, or signed with an old secret) yields a fresh session.
func (m *Manager) cookie(r *http.Request) *sessions.Session {
	cs, err := m.cookies.Get(r, m.config.CookieName)
	if err != nil {
		m.logDebug("discarding undecodable session cookie", "error", err)
	}
	return cs
}

func (m *Manager) triggerLogin(ctx context.Context, event *hooks.LoginEvent) {
	if m.config.Hooks == nil {
		return
	}
	if err := m.config.Hooks.TriggerLogin(ctx, event); err != nil {
		m.logWarn("login hook failed", "error", err)
	}
}

// newToken returns a random URL-safe token.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// clientAddr returns the host part of the request's remote address.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (m *Manager) logDebug(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Debug(msg, args...)
	}
}

func (m *Manager) logWarn(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Warn(msg, args...)
	}
}
