package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	memorybank "github.com/keeperhq/memorybank"
	"github.com/keeperhq/memorybank/internal/config"
	"github.com/keeperhq/memorybank/internal/errortypes"
	"github.com/keeperhq/memorybank/internal/logger"
)

func main() {
	// Bootstrap logging before anything else. The level is refined once
	// the configuration is loaded.
	appLogger := logger.Setup(&logger.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Service: "memorybank",
	})

	appLogger.Info("MemoryBank MCP Server - Starting...")

	// MEMORYBANK_* environment variables and a discovered config file
	// both feed the loader; either may be absent.
	cfg, err := config.InitGlobal(config.DefaultConfigFilename)
	if err != nil {
		errortypes.LogError(appLogger, errortypes.ConfigError(err, "Failed to load configuration"))
		os.Exit(1)
	}

	// Reconfigure logging from the loaded config. Stderr keeps log
	// lines off the stdio transport.
	appLogger = logger.Setup(&logger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: "memorybank",
	})

	srv, err := memorybank.NewServer(memorybank.ServerOptions{
		Config: cfg,
		Logger: appLogger,
	})
	if err != nil {
		errortypes.LogError(appLogger, err)
		os.Exit(1)
	}

	setupSignalHandler(srv, appLogger)

	appLogger.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		errortypes.LogError(appLogger, errortypes.APIError(err, "MCP server failed"))
		os.Exit(1)
	}
}

// setupSignalHandler shuts the server down cleanly on SIGINT/SIGTERM.
func setupSignalHandler(srv *memorybank.Server, log *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")
		if err := srv.Stop(); err != nil {
			os.Exit(1)
		}
		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
