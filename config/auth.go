package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreMode selects the session persistence backend.
type SessionStoreMode string

const (
	// SessionStoreRedis persists sessions in Redis (production).
	SessionStoreRedis SessionStoreMode = "redis"
	// SessionStoreMemory keeps sessions in process memory (development and tests).
	SessionStoreMemory SessionStoreMode = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreMode.
func (m *SessionStoreMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "redis", "memory":
		*m = SessionStoreMode(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreMode: %q (valid options: redis, memory)", v)
	}
}

// AuthConfig groups session and authentication-related configuration.
type AuthConfig struct {
	// SessionStore determines where sessions are persisted.
	SessionStore SessionStoreMode `env:"SESSION_STORE" envDefault:"redis"`

	// SessionTTL bounds sessions whose access token carries no expiry claim.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionStore == "" {
		a.SessionStore = SessionStoreRedis
	}
	if a.SessionTTL <= 0 {
		a.SessionTTL = 12 * time.Hour
	}
}
