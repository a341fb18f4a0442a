package httpx

import (
	"io"
	"log/slog"
	"net/http"

	domainidentity "github.com/vendora/marketplace-ui-api/internal/domain/identity"
	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
	"github.com/vendora/marketplace-ui-api/internal/guard"
	"github.com/vendora/marketplace-ui-api/internal/identity"
	"github.com/vendora/marketplace-ui-api/internal/metrics"
	"github.com/vendora/marketplace-ui-api/internal/session"
)

// SessionCookieName is the browser cookie carrying the session ID.
const SessionCookieName = "session_id"

// GuardConfig groups dependencies for the navigation guard middleware.
type GuardConfig struct {
	Guard    *guard.Guard
	Sessions *session.Manager
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Guard returns the navigation middleware: every page request is evaluated
// against the route policy table and either rendered, redirected, or
// denied. Each request is one navigation attempt with its own single-use
// redirect flag.
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	return guardMiddleware(cfg, false)
}

// GuardInPlace is Guard for sub-pages inside an already-allowed route
// prefix: permission failures render an access-denied message in place
// instead of redirecting, avoiding redirect thrashing on permission edges
// that differ page-to-page.
func GuardInPlace(cfg GuardConfig) func(http.Handler) http.Handler {
	return guardMiddleware(cfg, true)
}

func guardMiddleware(cfg GuardConfig, inPlace bool) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in, sess := resolveInput(r, cfg.Sessions, logger)

			var decision guard.Decision
			if inPlace {
				decision = cfg.Guard.EvaluateInPlace(in)
			} else {
				decision = cfg.Guard.Evaluate(in)
			}
			if cfg.Metrics != nil {
				cfg.Metrics.ObserveGuardDecision(decisionLabel(decision))
			}

			out := &httpOutcome{w: w, r: r, next: next, identity: in.Identity, session: sess}
			guard.Apply(decision, guard.NewAttempt(), out)
		})
	}
}

// resolveInput reads the session cookie, hydrates the caller's store, and
// resolves the identity. Store failures resolve to Anonymous so the guard
// fails closed rather than granting access on a broken lookup.
func resolveInput(
	r *http.Request,
	sessions *session.Manager,
	logger *slog.Logger,
) (guard.Input, domainsession.Session) {
	in := guard.Input{Path: r.URL.Path, Identity: domainidentity.Anonymous()}

	var sessionID string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	store, err := sessions.For(r.Context(), sessionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "session lookup failed",
			"path", r.URL.Path, "error", err)
		return in, domainsession.Session{}
	}

	sess := store.Read()
	in.Identity = identity.Resolve(sess)
	return in, sess
}

// httpOutcome maps guard effects onto the HTTP response.
type httpOutcome struct {
	w        http.ResponseWriter
	r        *http.Request
	next     http.Handler
	identity domainidentity.Identity
	session  domainsession.Session
}

func (o *httpOutcome) NavigateTo(target string) {
	http.Redirect(o.w, o.r, target, http.StatusSeeOther)
}

func (o *httpOutcome) RenderLoading() {
	o.w.Header().Set("Content-Type", "text/html; charset=utf-8")
	o.w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(o.w, loadingPage)
}

func (o *httpOutcome) RenderDenied() {
	http.Error(o.w, "Access Denied: You don't have permission to access this resource", http.StatusForbidden)
}

func (o *httpOutcome) RenderChildren() {
	ctx := SetIdentityInContext(o.r.Context(), o.identity)
	ctx = SetSessionInContext(ctx, o.session)
	o.next.ServeHTTP(o.w, o.r.WithContext(ctx))
}

// loadingPage is the neutral affordance shown while session resolution has
// not settled; it must never reveal protected content.
const loadingPage = `<!doctype html><html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Loading</title></head><body><p>Loading&hellip;</p></body></html>`

func decisionLabel(d guard.Decision) string {
	switch d.Kind {
	case guard.Loading:
		return "loading"
	case guard.Allow:
		return "allow"
	case guard.Redirect:
		return "redirect"
	case guard.Denied:
		return "denied"
	default:
		return "unknown"
	}
}
