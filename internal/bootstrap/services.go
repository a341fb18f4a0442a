package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/vendora/marketplace-ui-api/config"
	"github.com/vendora/marketplace-ui-api/internal/adapters/backendapi"
	redisadapter "github.com/vendora/marketplace-ui-api/internal/adapters/redis"
	"github.com/vendora/marketplace-ui-api/internal/gateway"
	"github.com/vendora/marketplace-ui-api/internal/guard"
	"github.com/vendora/marketplace-ui-api/internal/metrics"
	"github.com/vendora/marketplace-ui-api/internal/policy"
	"github.com/vendora/marketplace-ui-api/internal/service"
	"github.com/vendora/marketplace-ui-api/internal/session"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions *session.Manager
	Auth     *service.AuthService
	Guard    *guard.Guard
	Gateway  *gateway.Gateway
	Metrics  *metrics.Metrics
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the session layer, guard, gateway, and auth service.
func NewServices(deps *ServiceDeps) ServiceContainer {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend := newSessionBackend(deps)
	sessions := session.NewManager(backend)
	m := metrics.New()

	upstreamClient := &http.Client{Timeout: cfg.Backend.RequestTimeout}
	authClient := backendapi.New(cfg.Backend.APIBaseURL, upstreamClient)

	return ServiceContainer{
		Sessions: sessions,
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Backend:    authClient,
			Sessions:   sessions,
			DefaultTTL: cfg.Auth.SessionTTL,
		}),
		Guard: guard.New(policy.Default()),
		Gateway: gateway.New(gateway.Options{
			BackendOrigin: cfg.Backend.APIBaseURL,
			Client:        upstreamClient,
			Sessions:      sessions,
			Logger:        logger,
			Metrics:       m,
		}),
		Metrics: m,
	}
}

// newSessionBackend selects the session persistence backend from config.
func newSessionBackend(deps *ServiceDeps) session.Backend {
	cfg := deps.Config
	if cfg.Auth.SessionStore == config.SessionStoreMemory || deps.RedisClient == nil {
		return session.NewMemoryBackend()
	}
	return redisadapter.NewSessionBackend(deps.RedisClient, cfg.Auth.SessionTTL)
}
