package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vendora/marketplace-ui-api/config"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceOrchestrationConfig groups everything needed to run the gateway.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown
// signal is received.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	return waitForShutdown(server, logger)
}

// waitForShutdown waits for a shutdown signal, then stops the HTTP server.
func waitForShutdown(server *http.Server, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.Info("shutting down services...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	return ShutdownHTTPServer(ShutdownConfig{
		Context: shutdownCtx,
		Server:  server,
		Logger:  logger,
	})
}
