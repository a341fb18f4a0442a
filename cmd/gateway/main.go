package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/vendora/marketplace-ui-api/config"
	"github.com/vendora/marketplace-ui-api/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	cfgPtr := &cfg

	redisClient, err := connectSessionRedis(cfgPtr, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	services := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      cfgPtr,
		RedisClient: redisClient,
		Logger:      logger,
	})

	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:   cfgPtr,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting marketplace ui api",
		"addr", cfg.HTTP.Addr,
		"backend_origin", cfg.Backend.APIBaseURL,
		"session_store", cfg.Auth.SessionStore)
}

// connectSessionRedis connects Redis only when the session store needs it.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectSessionRedis(cfg *config.AppConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	if cfg.Auth.SessionStore == config.SessionStoreMemory {
		logger.Info("using in-memory session store")
		return nil, nil
	}
	return bootstrap.ConnectRedis(cfg.Redis, logger)
}
