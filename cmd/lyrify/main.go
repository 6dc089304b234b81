package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lyrify/internal/config"
	"lyrify/internal/server"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"
)

type serverArgs struct {
	Config string `arg:"-c,--config" default:"./lyrify.toml" help:"Configuration file (created with defaults if missing)"`
}

func (serverArgs) Description() string {
	return "lyrify - lyrics relay server"
}

func main() {
	var args serverArgs
	arg.MustParse(&args)
	configPath := args.Config

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	// Switch to the configured logger
	logger, err = config.NewLogger(cfg.Logging)
	if err != nil {
		logrus.WithError(err).Fatal("Error configuring logging")
	}

	if _, err := os.Stat(cfg.Server.StaticDir); os.IsNotExist(err) {
		logger.WithField("static_dir", cfg.Server.StaticDir).Warn("Static directory does not exist, only the API will be served")
	}

	lyricsServer, err := server.NewLyricsServer(cfg, configPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error creating lyrics server")
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- lyricsServer.Start()
	}()

	select {
	case <-c:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("Server stopped")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := lyricsServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}
}
