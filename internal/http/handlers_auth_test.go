package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/vendora/marketplace-ui-api/internal/domain/session"
	"github.com/vendora/marketplace-ui-api/internal/ports"
	"github.com/vendora/marketplace-ui-api/internal/session"
)

// mockAuthService is a hand-written double for AuthServiceInterface.
type mockAuthService struct {
	loginFunc   func(ctx context.Context, creds ports.Credentials) (domainsession.Session, error)
	refreshFunc func(ctx context.Context, sessionID string) (domainsession.Session, error)
	logoutFunc  func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Login(ctx context.Context, creds ports.Credentials) (domainsession.Session, error) {
	return m.loginFunc(ctx, creds)
}

func (m *mockAuthService) Refresh(ctx context.Context, sessionID string) (domainsession.Session, error) {
	return m.refreshFunc(ctx, sessionID)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc == nil {
		return nil
	}
	return m.logoutFunc(ctx, sessionID)
}

func sellerSession(id string) domainsession.Session {
	return domainsession.Session{
		ID:          id,
		AccessToken: "tok",
		Profile:     json.RawMessage(`{"user":{"userType":"seller"}}`),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", SessionCookieName)
	return nil
}

func TestLogin_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(_ context.Context, creds ports.Credentials) (domainsession.Session, error) {
			assert.Equal(t, "seller@example.com", creds.Email)
			return sellerSession("sess-1"), nil
		},
	}
	h := &AuthHandlers{Svc: svc}

	body := strings.NewReader(`{"email":"seller@example.com","password":"hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w)
	assert.Equal(t, "sess-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	var resp struct {
		Success    bool   `json:"success"`
		RedirectTo string `json:"redirect_to"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "/dashboard/seller", resp.RedirectTo, "sellers land on their dashboard")
}

func TestLogin_ReturnUrlWins(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(context.Context, ports.Credentials) (domainsession.Session, error) {
			return sellerSession("sess-1"), nil
		},
	}
	h := &AuthHandlers{Svc: svc}

	body := strings.NewReader(`{"email":"a@b.c","password":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login?returnUrl=%2Fdashboard%2Fseller%2Forders", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	var resp struct {
		RedirectTo string `json:"redirect_to"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/dashboard/seller/orders", resp.RedirectTo)
}

func TestLogin_AbsoluteReturnUrlRejected(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(context.Context, ports.Credentials) (domainsession.Session, error) {
			return sellerSession("sess-1"), nil
		},
	}
	h := &AuthHandlers{Svc: svc}

	body := strings.NewReader(`{"email":"a@b.c","password":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login?returnUrl=https%3A%2F%2Fevil.example%2Fphish", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	var resp struct {
		RedirectTo string `json:"redirect_to"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/dashboard/seller", resp.RedirectTo, "open redirect attempt falls back to home")
}

func TestLogin_FailureIsGeneric401(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(context.Context, ports.Credentials) (domainsession.Session, error) {
			return domainsession.Session{}, errors.New("backend says: user suspended")
		},
	}
	h := &AuthHandlers{Svc: svc}

	body := strings.NewReader(`{"email":"a@b.c","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "login_failed")
	assert.NotContains(t, w.Body.String(), "suspended", "backend detail must not leak")
}

func TestLogin_MalformedBody(t *testing.T) {
	h := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_json")
}

func TestRefresh_RequiresCookie(t *testing.T) {
	h := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no_session")
}

func TestRefresh_Success(t *testing.T) {
	svc := &mockAuthService{
		refreshFunc: func(_ context.Context, sessionID string) (domainsession.Session, error) {
			assert.Equal(t, "sess-1", sessionID)
			return sellerSession("sess-1"), nil
		},
	}
	h := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", sessionCookie(t, w).Value)
}

func TestRefresh_Failure(t *testing.T) {
	svc := &mockAuthService{
		refreshFunc: func(context.Context, string) (domainsession.Session, error) {
			return domainsession.Session{}, errors.New("refresh token rejected")
		},
	}
	h := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "refresh_failed")
}

func TestLogout_AJAXGetsJSON(t *testing.T) {
	var loggedOut string
	svc := &mockAuthService{
		logoutFunc: func(_ context.Context, sessionID string) error {
			loggedOut = sessionID
			return nil
		},
	}
	h := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", loggedOut)

	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestLogout_BrowserRedirects(t *testing.T) {
	h := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestStatus_NoCookie(t *testing.T) {
	h := &AuthHandlers{Svc: &mockAuthService{}, Sessions: session.NewManager(session.NewMemoryBackend())}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}

func TestStatus_StaleCookieCleared(t *testing.T) {
	h := &AuthHandlers{Svc: &mockAuthService{}, Sessions: session.NewManager(session.NewMemoryBackend())}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "gone"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
	assert.Negative(t, sessionCookie(t, w).MaxAge, "stale cookie is cleared")
}

func TestStatus_StaffIdentityPayload(t *testing.T) {
	backend := session.NewMemoryBackend()
	require.NoError(t, backend.Save(context.Background(), domainsession.Session{
		ID:          "sess-staff",
		AccessToken: "tok",
		Profile:     json.RawMessage(`{"userType":"staff","staffRole":"DISPATCHER"}`),
		ExpiresAt:   time.Now().Add(time.Hour),
	}))
	h := &AuthHandlers{Svc: &mockAuthService{}, Sessions: session.NewManager(backend)}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-staff"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Authenticated bool `json:"authenticated"`
		Identity      struct {
			Kind       string `json:"kind"`
			SubRole    string `json:"sub_role"`
			Unassigned bool   `json:"unassigned"`
		} `json:"identity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "staff", resp.Identity.Kind)
	assert.Equal(t, "DISPATCHER", resp.Identity.SubRole)
	assert.False(t, resp.Identity.Unassigned)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/dashboard/seller", "/dashboard/seller"},
		{"/dashboard/seller?tab=orders", "/dashboard/seller?tab=orders"},
		{"https://evil.example/", "/"},
		{"//evil.example/path", "/"},
		{"relative/path", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectPath(tt.in), tt.in)
	}
}
