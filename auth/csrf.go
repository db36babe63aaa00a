package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
)

// maxCSRFMemory is the multipart memory budget used when reading the token;
// larger file parts spill to disk.
const maxCSRFMemory = 32 << 20

// CSRF token transport.
const (
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRFToken returns the token state-changing forms must send back.
// Authenticated requests use the token stored with the session; the login
// page gets one kept in the signed cookie, created on first use.
func (m *Manager) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if sess := SessionFromContext(r.Context()); sess != nil && sess.CSRFToken != "" {
		return sess.CSRFToken, nil
	}

	cs := m.cookie(r)
	if tok, ok := cs.Values[csrfKey].(string); ok && tok != "" {
		return tok, nil
	}
	tok, err := newToken()
	if err != nil {
		return "", err
	}
	cs.Values[csrfKey] = tok
	if err := cs.Save(r, w); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return tok, nil
}

// VerifyCSRF checks the token sent with r, from the X-CSRF-Token header or
// the csrf_token form field.
func (m *Manager) VerifyCSRF(r *http.Request) error {
	var want string
	if sess := SessionFromContext(r.Context()); sess != nil {
		want = sess.CSRFToken
	} else {
		want, _ = m.cookie(r).Values[csrfKey].(string)
	}

	got := r.Header.Get(CSRFHeader)
	if got == "" {
		err := r.ParseMultipartForm(maxCSRFMemory)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		got = r.FormValue(CSRFField)
	}
	if want == "" || got == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrCSRF
	}
	return nil
}

// CSRFProtect rejects state-changing requests whose CSRF token does not
// match with 403 Forbidden, and bodies cut off by http.MaxBytesReader with
// 413 Request Entity Too Large. Mount it inside RequireAdmin so the
// session's token is used.
func (m *Manager) CSRFProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		err := m.VerifyCSRF(r)
		if errors.Is(err, ErrBodyTooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		if err != nil {
			m.logWarn("rejected request with bad CSRF token", "path", r.URL.Path, "remote_addr", clientAddr(r))
			http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
