package main

import (
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/internal/handler/mcpserver"
	"github.com/thinko/swinelink/internal/handler/tools"
	"github.com/thinko/swinelink/internal/usecase"
	"github.com/thinko/swinelink/pkg/config"
)

func main() {
	// stdout carries the MCP protocol
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

	registrar := usecase.NewFromConfig(cfg, logger)
	server := mcpserver.NewServer(tools.NewRegistry(registrar), logger.Named("mcp"))

	logger.Info("starting MCP server on stdio")
	if err := server.Start(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
