package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePreflight_EchoesOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/seller/orders", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()

	HandlePreflight(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
	assert.Empty(t, w.Body.String())
}

func TestHandlePreflight_NoOriginFallsBackToWildcard(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	w := httptest.NewRecorder()

	HandlePreflight(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleUnknownPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/not-a-thing", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()

	HandleUnknownPath(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Error)
}

func TestResolve_EndpointTable(t *testing.T) {
	tests := []struct {
		path      string
		name      string
		needsAuth bool
	}{
		{"/api/auth/login", "auth", false},
		{"/api/products", "products", false},
		{"/api/products/42", "products", false},
		{"/api/seller/stats", "dashboard_stats", true},
		{"/api/seller/orders/7/items", "orders", true},
		{"/api/buyer/returns", "buyer_returns", true},
		{"/api/admin/users", "admin", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ep, ok := Resolve(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.name, ep.Name)
			assert.Equal(t, tt.needsAuth, ep.RequiresAuth)
		})
	}
}

func TestResolve_OutsideSurface(t *testing.T) {
	for _, path := range []string{"/api", "/api/", "/api/unknown", "/api/sellerx", "/dashboard/seller"} {
		_, ok := Resolve(path)
		assert.False(t, ok, path)
	}
}
