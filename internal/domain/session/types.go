// Package session contains the domain-level session record. The record is
// owned exclusively by the session store; everything else reads it.
package session

import (
	"encoding/json"
	"time"
)

// Session is the credential material held for one logged-in browser.
// ID is an opaque session identifier (random URL-safe string). Profile is
// the cached identity-bearing payload returned by the backend at login; it
// is an opaque JSON blob with no schema required beyond "presence implies
// authenticated".
type Session struct {
	ID           string          `json:"id"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Profile      json.RawMessage `json:"profile,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// IsEmpty reports whether the session carries no credential material.
func (s Session) IsEmpty() bool { return s.AccessToken == "" }

// IsExpired reports whether the session's expiry has passed. A zero
// ExpiresAt means no known expiry and is never considered expired here;
// the backend remains the authority via 401 responses.
func (s Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
