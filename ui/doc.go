// Package ui provides the embedded admin console for the motorcycle rental
// API.
//
// Handler serves two surfaces from one http.Handler:
//   - the SSR pages (package frontend): login, dashboard, motorcycles,
//     users and rentals
//   - a read-only JSON API under /api/ (package api)
//
// Both go through an auth.Manager, which owns the admin session and the
// CSRF tokens. Data comes from a motoadmin.Client.
//
// # Quick Start
//
//	client, _ := motoadmin.NewClient(&motoadmin.ClientConfig{
//	    BaseURL: "http://localhost:5000/api",
//	})
//	store := storage.NewMemoryStore()
//	reg := hooks.NewRegistry()
//	hooks.NewAuditHooks(store).Register(reg)
//
//	mgr, _ := auth.NewManager(client, store, &auth.Config{
//	    SessionSecret: os.Getenv("MOTOADMIN_SESSION_SECRET"),
//	    Hooks:         reg,
//	})
//
//	mux := http.NewServeMux()
//	mux.Handle("/", ui.Handler(client, mgr, store, &ui.Config{Hooks: reg}))
//	http.ListenAndServe(":8080", mux)
//
// # Adding Middleware
//
// Wrap the handler externally using standard Go patterns:
//
//	handler := loggingMiddleware(ui.Handler(client, mgr, store, cfg))
//	http.Handle("/", handler)
package ui
