package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vendora/marketplace-ui-api/config"
	httpx "github.com/vendora/marketplace-ui-api/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Auth:         cfg.Services.Auth,
		Sessions:     cfg.Services.Sessions,
		Guard:        cfg.Services.Guard,
		Gateway:      cfg.Services.Gateway,
		CookieDomain: appCfg.HTTP.CookieDomain,
		Logger:       logger,
		Metrics:      cfg.Services.Metrics,
	}

	handler := buildHTTPHandler(logger, services)

	// Start server (logs "starting HTTP server" internally)
	server := startServer(logger, handler, appCfg.HTTP.Addr)

	return server
}

func buildHTTPHandler(logger *slog.Logger, services httpx.RouterServices) http.Handler {
	// Order: Recover -> Logging -> Router
	h := httpx.NewRouter(services)
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)
	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(cfg.Context, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
