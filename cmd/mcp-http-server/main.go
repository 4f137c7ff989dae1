package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/internal/handler"
	"github.com/thinko/swinelink/internal/handler/httpapi"
	"github.com/thinko/swinelink/internal/handler/tools"
	"github.com/thinko/swinelink/internal/usecase"
	"github.com/thinko/swinelink/pkg/config"
	"github.com/thinko/swinelink/pkg/storage"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "swinelink",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger.SetLevel(hclog.Debug)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	apiKeys := httpapi.NewAPIKeyStore(cfg.ManagementKey, cfg.HTTPAPIKeys, storage.NewJSONStorage(cfg.DataDir), logger.Named("keys"))
	if !apiKeys.HasManagementKey() {
		logger.Warn("no management key configured, set SWINELINK_MANAGEMENT_KEY to manage API keys")
		logger.Warn("generate a key with: openssl rand -hex 32")
	}

	registrar := usecase.NewFromConfig(cfg, logger)
	server := httpapi.NewServer(tools.NewRegistry(registrar), apiKeys, cfg.Port, logger.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := handler.Run(ctx, server); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
