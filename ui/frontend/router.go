package frontend

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/auth"
	"github.com/youssefsiam38/motoadmin/ui/service"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// maxFormSize bounds request bodies: the largest accepted image plus the
// other form fields.
const maxFormSize = motoadmin.MaxImageSize + 1<<20

// Config holds frontend router configuration.
type Config struct {
	// Logger for structured logging.
	Logger Logger
}

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// router holds the frontend router state.
type router struct {
	svc      *service.Service
	auth     *auth.Manager
	config   *Config
	renderer *renderer
}

// NewRouter creates a new frontend router.
func NewRouter(svc *service.Service, mgr *auth.Manager, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = &Config{}
	}

	// Parse base templates (layout, shared fragments)
	// Page-specific templates are parsed per render by the renderer
	// to avoid conflicts between "content" blocks in different pages.
	baseTmpl := template.Must(template.New("").
		Funcs(templateFuncs()).
		ParseFS(templatesFS,
			"templates/base.html",
			"templates/fragments/*.html",
		))

	r := &router{
		svc:      svc,
		auth:     mgr,
		config:   cfg,
		renderer: newRenderer(baseTmpl, templatesFS),
	}

	mux := http.NewServeMux()

	// Static assets
	staticSub, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Public pages
	mux.HandleFunc("GET /login", r.handleLoginPage)
	mux.HandleFunc("POST /login", r.handleLogin)

	// Admin pages
	admin := func(h http.HandlerFunc) http.Handler {
		return mgr.RequireAdmin(mgr.CSRFProtect(h))
	}
	mux.Handle("GET /{$}", admin(r.handleRedirectToDashboard))
	mux.Handle("POST /logout", admin(r.handleLogout))
	mux.Handle("GET /dashboard", admin(r.handleDashboard))
	mux.Handle("GET /motorcycles", admin(r.handleMotorcycles))
	upload := func(h http.HandlerFunc) http.Handler {
		return mgr.RequireAdmin(r.rejectOversized(mgr.CSRFProtect(h)))
	}
	mux.Handle("POST /motorcycles", upload(r.handleAddMotorcycle))
	mux.Handle("POST /motorcycles/{id}", upload(r.handleUpdateMotorcycle))
	mux.Handle("POST /motorcycles/{id}/delete", admin(r.handleDeleteMotorcycle))
	mux.Handle("GET /users", admin(r.handleUsers))
	mux.Handle("POST /users/{id}/verify", admin(r.handleVerifyUser))
	mux.Handle("GET /rentals", admin(r.handleRentals))
	mux.Handle("POST /rentals/{id}/return", admin(r.handleReturnMotorcycle))

	return withFrontendMiddleware(mux, cfg)
}

// withFrontendMiddleware wraps the handler with frontend-specific middleware.
func withFrontendMiddleware(handler http.Handler, cfg *Config) http.Handler {
	handler = limitBodyMiddleware(handler)
	handler = frontendRecoveryMiddleware(handler, cfg.Logger)
	return handler
}

// limitBodyMiddleware caps request bodies at maxFormSize.
func limitBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
		}
		next.ServeHTTP(w, r)
	})
}

// frontendRecoveryMiddleware recovers from panics.
func frontendRecoveryMiddleware(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if logger != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime":    formatTime,
		"formatDate":    formatDate,
		"formatTimeAgo": formatTimeAgo,
		"formatMoney":   formatMoney,
		"formatPercent": formatPercent,
		"truncate":      truncate,
		"statusColor":   statusColor,
		"markdown":      markdown,
		"pageURL":       pageURL,
		"isActive":      isActive,
		"add":           add,
		"sub":           sub,
		"dict":          dictFunc,
	}
}

// dictFunc creates a map from key-value pairs for use in templates.
// Usage: {{template "foo" (dict "key1" val1 "key2" val2)}}
func dictFunc(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	dict := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		dict[key] = values[i+1]
	}
	return dict
}
