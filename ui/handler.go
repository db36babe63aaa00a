package ui

import (
	"net/http"

	"github.com/youssefsiam38/motoadmin/auth"
	"github.com/youssefsiam38/motoadmin/storage"
	"github.com/youssefsiam38/motoadmin/ui/api"
	"github.com/youssefsiam38/motoadmin/ui/frontend"
	"github.com/youssefsiam38/motoadmin/ui/service"
)

// Handler returns the console: the SSR pages at / and the JSON API under
// /api/. Both are gated by mgr; audit may be nil to hide recent activity.
//
// Usage:
//
//	mux.Handle("/", ui.Handler(client, mgr, store, cfg))
func Handler(client service.API, mgr *auth.Manager, audit storage.AuditStore, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}

	// Validate configuration (panic on invalid config as this is a programmer error)
	if err := cfg.validate(); err != nil {
		panic("ui: invalid configuration: " + err.Error())
	}
	if client == nil || mgr == nil {
		panic("ui: invalid configuration: client and session manager are required")
	}

	svc := service.New(client, audit, &service.Config{
		PageSize:       cfg.PageSize,
		RentalPageSize: cfg.RentalPageSize,
		ActivityLimit:  cfg.ActivityLimit,
		Hooks:          cfg.Hooks,
		Logger:         cfg.Logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", mgr.RequireAdminJSON(api.NewRouter(svc, &api.Config{
		Logger: cfg.Logger,
		EndSession: func(w http.ResponseWriter, r *http.Request) error {
			return mgr.Destroy(w, r, "token rejected")
		},
	}))))
	mux.Handle("/", frontend.NewRouter(svc, mgr, &frontend.Config{
		Logger: cfg.Logger,
	}))
	return mux
}
