package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/auth"
	"github.com/youssefsiam38/motoadmin/hooks"
	"github.com/youssefsiam38/motoadmin/internal/config"
	"github.com/youssefsiam38/motoadmin/internal/metrics"
	"github.com/youssefsiam38/motoadmin/leadership"
	"github.com/youssefsiam38/motoadmin/maintenance"
	"github.com/youssefsiam38/motoadmin/storage"
	"github.com/youssefsiam38/motoadmin/ui"
)

// shutdownTimeout bounds graceful shutdown of the server and workers.
const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin console",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if err := cfg.ValidateSession(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// app is everything serve wires together.
type app struct {
	handler http.Handler
	client  *motoadmin.Client
	metrics *metrics.Metrics
}

// newApp builds the console around store.
func newApp(cfg *config.Config, logger *slog.Logger, store storage.Store) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	client, err := motoadmin.NewClient(&motoadmin.ClientConfig{
		BaseURL:              cfg.APIURL,
		Timeout:              cfg.APITimeout,
		PageLimit:            cfg.PageSize,
		Logger:               logger,
		OnRequest:            m.ObserveUpstream,
		OnBreakerStateChange: m.BreakerStateChanged,
	})
	if err != nil {
		return nil, err
	}

	registry := hooks.NewRegistry()
	hooks.NewAuditHooks(store).Register(registry)
	hooks.NewLoggingHooks(logger).Register(registry)
	hooks.NewMetricsHooks(m.HookMetric).Register(registry)

	mgr, err := auth.NewManager(client, store, &auth.Config{
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		Secure:        cfg.SecureCookies,
		LoginRate:     cfg.LoginRate,
		LoginBurst:    cfg.LoginBurst,
		Hooks:         registry,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/", ui.Handler(client, mgr, store, &ui.Config{
		PageSize: cfg.PageSize,
		Hooks:    registry,
		Logger:   logger,
	}))

	return &app{
		handler: m.Middleware(metrics.RouteGroup, mux),
		client:  client,
		metrics: m,
	}, nil
}

// newCleanup builds the maintenance job reporting to logger and m.
func newCleanup(cfg *config.Config, logger *slog.Logger, store storage.Store, m *metrics.Metrics) *maintenance.Cleanup {
	return maintenance.NewCleanup(store, &maintenance.CleanupConfig{
		Interval:       cfg.CleanupInterval,
		AuditRetention: cfg.AuditRetention,
		OnCleanup: func(r *maintenance.CleanupResult) {
			logger.Info("cleanup removed expired state",
				"sessions", r.ExpiredSessionsDeleted,
				"audit_entries", r.AuditEntriesDeleted,
				"leases", r.ExpiredLeadersCleaned)
			if m != nil {
				m.Removed("sessions", r.ExpiredSessionsDeleted)
				m.Removed("audit_entries", r.AuditEntriesDeleted)
				m.Removed("leases", r.ExpiredLeadersCleaned)
			}
		},
		OnError: func(err error) {
			logger.Warn("cleanup failed", "error", err)
		},
	})
}

// serve runs the HTTP server and, on the elected replica, the cleanup job
// until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	be, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	a, err := newApp(cfg, logger, be.Store)
	if err != nil {
		return err
	}

	cleanup := newCleanup(cfg, logger, be.Store, a.metrics)
	elector := leadership.NewElector(be.Store, uuid.NewString(), &leadership.Config{Logger: logger}, leadership.Callbacks{
		OnBecameLeader: func(ctx context.Context) {
			logger.Info("became maintenance leader")
			if err := cleanup.Start(ctx); err != nil && !errors.Is(err, maintenance.ErrAlreadyStarted) {
				logger.Warn("start cleanup", "error", err)
			}
		},
		OnLostLeadership: func(ctx context.Context) {
			logger.Info("lost maintenance leadership")
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := cleanup.Stop(stopCtx); err != nil && !errors.Is(err, maintenance.ErrNotStarted) {
				logger.Warn("stop cleanup", "error", err)
			}
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("motoadmin listening", "addr", cfg.Addr, "api_url", cfg.APIURL, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return elector.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
		if err := elector.Stop(shutdownCtx); err != nil && !errors.Is(err, leadership.ErrNotStarted) {
			logger.Warn("stop elector", "error", err)
		}
		return nil
	})
	return g.Wait()
}
