package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/marketplace-ui-api/internal/ports"
)

func TestLogin_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"access-1","refreshToken":"refresh-1","user":{"userType":"seller"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	grant, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "/api/auth/login", gotPath)
	assert.Equal(t, "a@b.c", gotBody["email"])
	assert.Equal(t, "access-1", grant.AccessToken)
	assert.Equal(t, "refresh-1", grant.RefreshToken)
	assert.JSONEq(t, `{"userType":"seller"}`, string(grant.Profile))
}

func TestLogin_AccessTokenFieldVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accessToken":"access-2"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	grant, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "access-2", grant.AccessToken)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	_, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.c", Password: "bad"})
	assert.True(t, errors.Is(err, ErrRejected))
}

func TestLogin_NoTokenInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	_, err := client.Login(context.Background(), ports.Credentials{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no access token")
}

func TestRefresh_KeepsTokenWhenNotRotated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/refresh", r.URL.Path)
		w.Write([]byte(`{"token":"access-3"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	grant, err := client.Refresh(context.Background(), "refresh-old")
	require.NoError(t, err)
	assert.Equal(t, "access-3", grant.AccessToken)
	assert.Equal(t, "refresh-old", grant.RefreshToken, "unrotated refresh token is kept")
}

func TestRefresh_RotatedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-old", body["refreshToken"])
		w.Write([]byte(`{"token":"access-4","refreshToken":"refresh-new"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	grant, err := client.Refresh(context.Background(), "refresh-old")
	require.NoError(t, err)
	assert.Equal(t, "refresh-new", grant.RefreshToken)
}

func TestRefresh_EmptyToken(t *testing.T) {
	client := New("http://127.0.0.1:1", nil)
	_, err := client.Refresh(context.Background(), "")
	require.Error(t, err)
}

func TestLogout_SendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	require.NoError(t, client.Logout(context.Background(), "access-5"))
	assert.Equal(t, "Bearer access-5", gotAuth)
}

func TestLogout_EmptyTokenIsNoOp(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	require.NoError(t, client.Logout(context.Background(), ""))
	assert.False(t, called)
}
