package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
	"github.com/vendora/marketplace-ui-api/internal/identity"
	"github.com/vendora/marketplace-ui-api/internal/ports"
	"github.com/vendora/marketplace-ui-api/internal/session"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, creds ports.Credentials) (domainsession.Session, error)
	Refresh(ctx context.Context, sessionID string) (domainsession.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Sessions     *session.Manager
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles credential login.
// POST /auth/login with a JSON body {email, password}.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds ports.Credentials
	if !DecodeJSON(w, r, &creds) {
		return
	}

	sess, err := h.Svc.Login(r.Context(), creds)
	if err != nil {
		h.logger().WarnContext(r.Context(), "login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "login_failed",
			Err:     errors.New("invalid credentials"),
		})
		return
	}

	h.setSessionCookie(w, r, sess)

	// The caller may carry the path it was bounced from; send it back there.
	redirectTo := safeRedirectPath(r.URL.Query().Get("returnUrl"))
	if redirectTo == "/" {
		redirectTo = identity.Resolve(sess).HomePath()
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"redirect_to": redirectTo,
		"expires_at":  sess.ExpiresAt,
	})
}

// Refresh replaces the current access token.
// POST /auth/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "no_session",
			Err:     errors.New("no active session"),
		})
		return
	}

	sess, err := h.Svc.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.logger().WarnContext(r.Context(), "refresh failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "refresh_failed",
			Err:     errors.New("session could not be refreshed"),
		})
		return
	}

	h.setSessionCookie(w, r, sess)
	WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"expires_at": sess.ExpiresAt,
	})
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	// Invalidate the server-side session if present
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	// Clear session cookie on the client
	h.clearCookie(w, r, SessionCookieName)

	// AJAX requests get a JSON payload; regular requests redirect
	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": "/",
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	store, err := h.Sessions.For(r.Context(), cookie.Value)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "session lookup failed", "error", err)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	sess := store.Read()
	if sess.IsEmpty() {
		// Session is gone server-side; clear the stale cookie
		h.clearCookie(w, r, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	id := identity.Resolve(sess)
	payload := map[string]any{
		"authenticated": true,
		"identity": map[string]any{
			"kind":       id.Kind,
			"unassigned": id.Unassigned,
		},
		"expires_at": sess.ExpiresAt,
	}
	if id.SubRole != "" {
		payload["identity"].(map[string]any)["sub_role"] = id.SubRole
	}
	WriteJSON(w, http.StatusOK, payload)
}

// setSessionCookie writes the session cookie with the session's lifetime.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, sess domainsession.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
