// Package gateway implements the proxy gateway: a stateless request handler
// that forwards client calls to the configured backend origin and translates
// the results back, handling authorization propagation, CORS, content-type
// fidelity, and 401-driven session invalidation.
package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vendora/marketplace-ui-api/internal/metrics"
)

// SessionInvalidator is the slice of the session layer the gateway needs:
// the idempotent clear used when the backend reports an expired token.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, sessionID string) (bool, error)
}

// SessionCookieName is the browser cookie carrying the session ID.
const SessionCookieName = "session_id"

// Options groups dependencies for the Gateway.
type Options struct {
	// BackendOrigin is the backend base origin (scheme://host[:port]),
	// resolved from configuration only — never from client-supplied data.
	BackendOrigin string
	// Client is the HTTP client used for upstream calls. Its timeout bounds
	// backend unavailability; failures surface as an immediate 503.
	Client *http.Client
	// Sessions is invalidated when the backend answers 401.
	Sessions SessionInvalidator
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Gateway forwards requests to the backend service. No state persists
// between requests; each invocation is independent.
type Gateway struct {
	backendOrigin string
	client        *http.Client
	sessions      SessionInvalidator
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// New constructs a Gateway.
func New(opts Options) *Gateway {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		backendOrigin: strings.TrimSuffix(opts.BackendOrigin, "/"),
		client:        client,
		sessions:      opts.Sessions,
		logger:        logger,
		metrics:       opts.Metrics,
	}
}

// Forward proxies the request to the backend endpoint matching its path.
// CORS headers are always present on the response, error paths included.
func (g *Gateway) Forward(w http.ResponseWriter, r *http.Request, endpoint Endpoint) {
	applyCORS(w.Header(), r.Header.Get("Origin"))

	start := time.Now()

	if endpoint.RequiresAuth && r.Header.Get("Authorization") == "" {
		// Gateway-local rejection: no backend call is attempted.
		g.observe(endpoint, r.Method, http.StatusUnauthorized, start)
		WriteEnvelope(w, http.StatusUnauthorized, "authorization required", "missing_authorization")
		return
	}

	upstream, err := g.buildUpstreamRequest(r)
	if err != nil {
		g.logger.ErrorContext(r.Context(), "build upstream request failed",
			"path", r.URL.Path, "error", err)
		g.observe(endpoint, r.Method, http.StatusServiceUnavailable, start)
		WriteEnvelope(w, http.StatusServiceUnavailable, "backend unavailable", "backend_unreachable")
		return
	}

	resp, err := g.client.Do(upstream)
	if err != nil {
		// Transport failure (connect error or timeout): the client never
		// sees an unhandled exception or an opaque 500 for connectivity.
		g.logger.ErrorContext(r.Context(), "backend request failed",
			"path", r.URL.Path, "error", err)
		if g.metrics != nil {
			g.metrics.UpstreamErrors.WithLabelValues("transport").Inc()
		}
		g.observe(endpoint, r.Method, http.StatusServiceUnavailable, start)
		WriteEnvelope(w, http.StatusServiceUnavailable, "backend unavailable", "backend_unreachable")
		return
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			g.logger.ErrorContext(r.Context(), "close upstream body failed", "error", cerr)
		}
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		g.handleUpstreamUnauthorized(r)
	}

	g.observe(endpoint, r.Method, resp.StatusCode, start)
	g.relay(w, r, resp)
}

// buildUpstreamRequest constructs the outgoing request: original method and
// body against the configured origin, original query string unmodified, and
// only the two headers the backend contract needs.
func (g *Gateway) buildUpstreamRequest(r *http.Request) (*http.Request, error) {
	target := g.backendOrigin + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	upstream, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		return nil, err
	}

	// Multipart uploads keep the client's content type so the boundary the
	// client's transport chose survives; everything else is JSON.
	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "multipart/form-data") {
		upstream.Header.Set("Content-Type", ct)
	} else {
		upstream.Header.Set("Content-Type", "application/json")
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		upstream.Header.Set("Authorization", auth)
	}

	return upstream, nil
}

// relay copies the backend response to the client: status unchanged,
// declared content type echoed, Content-Disposition preserved so browser
// download behavior survives for CSV exports.
func (g *Gateway) relay(w http.ResponseWriter, r *http.Request, resp *http.Response) {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Client disconnects mid-stream can't be recovered from here.
		g.logger.ErrorContext(r.Context(), "relay upstream body failed",
			"path", r.URL.Path, "error", err)
	}
}

// handleUpstreamUnauthorized clears the caller's session when the backend
// rejects the current token. The store's clear is idempotent and reports
// whether this call performed the transition, so N concurrent 401s for the
// same session produce exactly one unauthorized broadcast; later handlers
// observe an already empty session and no-op.
func (g *Gateway) handleUpstreamUnauthorized(r *http.Request) {
	if g.sessions == nil {
		return
	}
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return // No session to clear
	}

	ctx := r.Context()
	cleared, err := g.sessions.Invalidate(ctx, cookie.Value)
	if err != nil {
		g.logger.ErrorContext(ctx, "invalidate session after 401 failed", "error", err)
	}
	if cleared && g.metrics != nil {
		g.metrics.SessionClears.WithLabelValues("upstream_401").Inc()
	}
}

func (g *Gateway) observe(endpoint Endpoint, method string, status int, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.ObserveRequest(endpoint.Name, method, status, time.Since(start))
}
