package main

import (
	"os"

	"github.com/leemorgale/sms-chat/internal/config"
	"github.com/leemorgale/sms-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// configPathEnv names an optional absolute path to a JSON or YAML config file
const configPathEnv = "SMSCHAT_CONFIG_FILE"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(os.Getenv(configPathEnv))
	if err != nil {
		panic(err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Path, cfg.Logging.Level); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("SMS chat server starting", zap.String("version", version))
	gin.SetMode(gin.ReleaseMode)

	// Setup and start server
	srv, cleanup, err := SetupServer(cfg)
	if err != nil {
		logger.Fatal("Failed to setup server", zap.Error(err))
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Failed to release resources", zap.Error(err))
		}
	}()

	if err := StartServer(srv); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
	logger.Info("Server shutting down")
}
