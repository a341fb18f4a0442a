package config

import (
	"strings"
	"time"
)

// DefaultBackendOrigin is used when BACKEND_API_BASE_URL is unset. Absence
// of the variable is a documented default, never a startup failure.
const DefaultBackendOrigin = "http://localhost:5000"

// BackendConfig contains the marketplace backend API configuration.
// The origin is the only place backend addressing comes from; it is never
// derived from client-supplied data.
type BackendConfig struct {
	// APIBaseURL is the backend base origin (scheme://host[:port]).
	APIBaseURL string `env:"BACKEND_API_BASE_URL" envDefault:"http://localhost:5000"`

	// RequestTimeout bounds one upstream round trip. Timeouts surface to
	// the client as a 503 envelope rather than a hang.
	RequestTimeout time.Duration `env:"BACKEND_REQUEST_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.APIBaseURL = strings.TrimSuffix(strings.TrimSpace(b.APIBaseURL), "/")
	if b.APIBaseURL == "" {
		b.APIBaseURL = DefaultBackendOrigin
	}
	if b.RequestTimeout <= 0 {
		b.RequestTimeout = 30 * time.Second
	}
}
