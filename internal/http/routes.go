package httpx

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendora/marketplace-ui-api/internal/gateway"
	"github.com/vendora/marketplace-ui-api/internal/guard"
	"github.com/vendora/marketplace-ui-api/internal/metrics"
	"github.com/vendora/marketplace-ui-api/internal/session"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     AuthServiceInterface
	Sessions *session.Manager
	Guard    *guard.Guard
	Gateway  *gateway.Gateway
	// Pages renders allowed navigations. The page layer is an external
	// collaborator; when nil a minimal shell is served so the guard and
	// proxy remain exercisable on their own.
	Pages        http.Handler
	CookieDomain string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// NewRouter creates and configures the HTTP router: the auth endpoints, the
// proxied /api surface, observability endpoints, and the guarded page
// catch-all.
func NewRouter(services RouterServices) http.Handler {
	r := chi.NewRouter()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Sessions:     services.Sessions,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	r.Post("/auth/login", authHandlers.Login)
	r.Post("/auth/refresh", authHandlers.Refresh)
	r.Post("/auth/logout", authHandlers.Logout)
	r.Get("/auth/status", authHandlers.Status)

	r.Get("/healthz", healthHandler)
	r.Head("/healthz", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Proxied API surface. Preflights are answered locally; everything else
	// within the endpoint table is forwarded to the backend.
	r.HandleFunc("/api/*", proxyHandler(services.Gateway))

	// Every remaining path is a page navigation and goes through the guard.
	pages := services.Pages
	if pages == nil {
		pages = http.HandlerFunc(placeholderPage)
	}
	guarded := Guard(GuardConfig{
		Guard:    services.Guard,
		Sessions: services.Sessions,
		Logger:   services.Logger,
		Metrics:  services.Metrics,
	})(pages)
	r.NotFound(guarded.ServeHTTP)

	return r
}

// proxyHandler resolves the endpoint for a proxied path and forwards it.
// Preflights are answered here, before endpoint resolution, so they succeed
// on every proxied path regardless of auth requirements or backend state.
// Paths outside the fixed surface are rejected locally, CORS included.
func proxyHandler(gw *gateway.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			gateway.HandlePreflight(w, r)
			return
		}
		endpoint, ok := gateway.Resolve(r.URL.Path)
		if !ok {
			gateway.HandleUnknownPath(w, r)
			return
		}
		gw.Forward(w, r, endpoint)
	}
}

// placeholderPage stands in for the excluded page layer: a bare shell that
// confirms the navigation was allowed without rendering any business UI.
func placeholderPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<!doctype html><html><body><main data-path=%q></main></body></html>",
		html.EscapeString(r.URL.Path))
}
