// Package backendapi implements the BackendAuthenticator port over the
// marketplace backend's HTTP auth endpoints.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vendora/marketplace-ui-api/internal/ports"
)

// Client talks to the backend auth endpoints. It is safe for concurrent use.
type Client struct {
	origin string
	http   *http.Client
}

// ErrRejected is returned when the backend answers an auth flow with a
// non-2xx status (bad credentials, revoked refresh token).
var ErrRejected = errors.New("backend rejected auth request")

// New creates a client against the given backend origin.
func New(origin string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		origin: strings.TrimSuffix(origin, "/"),
		http:   httpClient,
	}
}

// grantResponse tolerates the backend's auth payload variants: token field
// naming differs between the login and refresh endpoints.
type grantResponse struct {
	Token        string          `json:"token"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
}

func (r grantResponse) grant() ports.TokenGrant {
	access := r.AccessToken
	if access == "" {
		access = r.Token
	}
	return ports.TokenGrant{
		AccessToken:  access,
		RefreshToken: r.RefreshToken,
		Profile:      r.User,
	}
}

func (c *Client) Login(ctx context.Context, creds ports.Credentials) (ports.TokenGrant, error) {
	var resp grantResponse
	if err := c.post(ctx, "/api/auth/login", creds, "", &resp); err != nil {
		return ports.TokenGrant{}, fmt.Errorf("login: %w", err)
	}

	grant := resp.grant()
	if grant.AccessToken == "" {
		return ports.TokenGrant{}, errors.New("login: backend returned no access token")
	}
	return grant, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (ports.TokenGrant, error) {
	if refreshToken == "" {
		return ports.TokenGrant{}, errors.New("refresh token is required")
	}

	body := map[string]string{"refreshToken": refreshToken}
	var resp grantResponse
	if err := c.post(ctx, "/api/auth/refresh", body, "", &resp); err != nil {
		return ports.TokenGrant{}, fmt.Errorf("refresh: %w", err)
	}

	grant := resp.grant()
	if grant.AccessToken == "" {
		return ports.TokenGrant{}, errors.New("refresh: backend returned no access token")
	}
	if grant.RefreshToken == "" {
		// Backend did not rotate; keep using the current one.
		grant.RefreshToken = refreshToken
	}
	return grant, nil
}

func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := c.post(ctx, "/api/auth/logout", struct{}{}, accessToken, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// post sends a JSON request and decodes a JSON response into out (when
// non-nil). Non-2xx statuses map to ErrRejected with the status attached.
func (c *Client) post(ctx context.Context, path string, body any, bearer string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
