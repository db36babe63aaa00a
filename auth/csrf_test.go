package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFProtect_Session(t *testing.T) {
	f := newFixture(t)
	sess, cookies := f.login(t)

	h := f.mgr.RequireAdmin(f.mgr.CSRFProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("rejects POST without token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withCookies(httptest.NewRequest(http.MethodPost, "/users/u1/verify", nil), cookies))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects POST with wrong token", func(t *testing.T) {
		form := url.Values{CSRFField: {"nope"}}
		req := httptest.NewRequest(http.MethodPost, "/users/u1/verify", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withCookies(req, cookies))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("accepts form token", func(t *testing.T) {
		form := url.Values{CSRFField: {sess.CSRFToken}}
		req := httptest.NewRequest(http.MethodPost, "/users/u1/verify", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withCookies(req, cookies))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("accepts header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/motorcycles/m1", nil)
		req.Header.Set(CSRFHeader, sess.CSRFToken)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withCookies(req, cookies))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("GET needs no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, withCookies(httptest.NewRequest(http.MethodGet, "/users", nil), cookies))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestCSRFToken_BeforeLogin(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	tok, err := f.mgr.CSRFToken(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The same token comes back while the cookie lives.
	again, err := f.mgr.CSRFToken(httptest.NewRecorder(), withCookies(httptest.NewRequest(http.MethodGet, "/login", nil), cookies))
	require.NoError(t, err)
	assert.Equal(t, tok, again)

	form := url.Values{CSRFField: {tok}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.NoError(t, f.mgr.VerifyCSRF(withCookies(req, cookies)))

	// Without the cookie the token means nothing.
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.ErrorIs(t, f.mgr.VerifyCSRF(req), ErrCSRF)
}

func TestCSRFToken_RotatedOnLogin(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	pre, err := f.mgr.CSRFToken(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)

	loginRec := httptest.NewRecorder()
	sess, err := f.mgr.Login(loginRec, withCookies(httptest.NewRequest(http.MethodPost, "/login", nil), rec.Result().Cookies()), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, pre, sess.CSRFToken)
}

func TestCSRFProtect_BodyTooLarge(t *testing.T) {
	f := newFixture(t)
	sess, cookies := f.login(t)

	called := false
	h := f.mgr.RequireAdmin(f.mgr.CSRFProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	form := url.Values{CSRFField: {sess.CSRFToken}, "description": {strings.Repeat("x", 4096)}}
	req := httptest.NewRequest(http.MethodPost, "/motorcycles", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 1024)
	h.ServeHTTP(rec, withCookies(req, cookies))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, called)
}
