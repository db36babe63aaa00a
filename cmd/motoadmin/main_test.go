package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/youssefsiam38/motoadmin/internal/config"
	"github.com/youssefsiam38/motoadmin/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"MOTOADMIN_SESSION_SECRET": "0123456789abcdef0123456789abcdef",
		"MOTOADMIN_API_URL":        "http://127.0.0.1:1/api",
	})
	require.NoError(t, err)
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "cleanup"})
}

func TestApp_Routes(t *testing.T) {
	a, err := newApp(testConfig(t), discardLogger(), storage.NewMemoryStore())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `motoadmin_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestOpenStore_Memory(t *testing.T) {
	be, err := openStore(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, be.Store)
	assert.Nil(t, be.migrate)
	assert.NoError(t, be.close())
}

func TestCleanup_RemovesExpiredState(t *testing.T) {
	cfg := testConfig(t)
	store := storage.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, &storage.Session{ID: "old", Token: "t", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, store.CreateSession(ctx, &storage.Session{ID: "live", Token: "t", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.RecordAudit(ctx, &storage.AuditEntry{Action: "Login", CreatedAt: time.Now().Add(-2 * cfg.AuditRetention)}))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	result := newCleanup(cfg, logger, store, nil).RunOnce(ctx)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ExpiredSessionsDeleted)
	assert.Equal(t, 1, result.AuditEntriesDeleted)

	_, err := store.GetSession(ctx, "live")
	assert.NoError(t, err)
}
