package ui

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/auth"
	"github.com/youssefsiam38/motoadmin/internal/testutil"
	"github.com/youssefsiam38/motoadmin/storage"
)

func newHandler(t *testing.T, cfg *Config) http.Handler {
	t.Helper()
	return newHandlerFor(t, testutil.NewFakeAPI(t), cfg)
}

func newHandlerFor(t *testing.T, api *testutil.FakeAPI, cfg *Config) http.Handler {
	t.Helper()
	client, err := motoadmin.NewClient(&motoadmin.ClientConfig{BaseURL: api.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	store := storage.NewMemoryStore()
	mgr, err := auth.NewManager(client, store, &auth.Config{SessionSecret: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return Handler(client, mgr, store, cfg)
}

func TestHandler_Routes(t *testing.T) {
	h := newHandler(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unauthorized"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fdashboard", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin Login")
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultRentalPageSize, cfg.RentalPageSize)
	assert.Equal(t, DefaultActivityLimit, cfg.ActivityLimit)
	assert.NoError(t, cfg.validate())
}

func TestHandler_InvalidConfigPanics(t *testing.T) {
	assert.PanicsWithValue(t, "ui: invalid configuration: ui: invalid configuration", func() {
		newHandler(t, &Config{PageSize: 1000})
	})
	assert.Panics(t, func() {
		Handler(nil, nil, nil, nil)
	})
}

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func TestHandler_RejectedTokenEndsAPISession(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser(&motoadmin.User{Name: "Ada", Email: "ada@example.com", Role: motoadmin.RoleAdmin}, "secret1")
	srv := httptest.NewServer(newHandlerFor(t, fake, nil))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	status := func(resp *http.Response, err error) int {
		t.Helper()
		require.NoError(t, err)
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	resp, err := client.Get(srv.URL + "/login")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	m := csrfField.FindSubmatch(body)
	require.NotNil(t, m)

	assert.Equal(t, http.StatusSeeOther, status(client.PostForm(srv.URL+"/login", url.Values{
		"email":      {"ada@example.com"},
		"password":   {"secret1"},
		"csrf_token": {string(m[1])},
	})))
	assert.Equal(t, http.StatusOK, status(client.Get(srv.URL+"/api/activities")))

	fake.RevokeTokens()
	assert.Equal(t, http.StatusUnauthorized, status(client.Get(srv.URL+"/api/motorcycles")))

	// The session is gone, not just the upstream call.
	assert.Equal(t, http.StatusUnauthorized, status(client.Get(srv.URL+"/api/activities")))
	assert.Equal(t, http.StatusFound, status(client.Get(srv.URL+"/dashboard")))
}
