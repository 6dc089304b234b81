package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lyrify/internal/config"
	"lyrify/internal/lyrics"
	"lyrify/internal/ngrok"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// LyricsServer serves the lyrics relay endpoint and the static front-end.
type LyricsServer struct {
	config       *config.Config
	configPath   string
	logger       *logrus.Logger
	lyrics       *lyrics.Client
	watcher      *fsnotify.Watcher
	ngrokService *ngrok.Service
	httpServer   *http.Server
}

// NewLyricsServer creates a new server instance. configPath is only used for
// hot reloading and may be empty.
func NewLyricsServer(cfg *config.Config, configPath string, logger *logrus.Logger) (*LyricsServer, error) {
	if logger == nil {
		logger = logrus.New()
	}

	client, err := lyrics.NewClient(cfg.Upstream.BaseURL, logger, lyrics.WithTimeout(cfg.UpstreamTimeout()))
	if err != nil {
		return nil, fmt.Errorf("failed to create lyrics client: %w", err)
	}

	// Create ngrok service
	ngrokSvc, err := ngrok.NewService(&cfg.Ngrok, logger)
	if err != nil {
		logger.WithError(err).Warn("Ngrok service not available")
		ngrokSvc = nil
	}

	return &LyricsServer{
		config:       cfg,
		configPath:   configPath,
		logger:       logger,
		lyrics:       client,
		ngrokService: ngrokSvc,
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (ls *LyricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", ls.handleHome)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(ls.config.Server.StaticDir))))
	mux.HandleFunc("/api/lyrics", ls.handleLyrics)
	mux.HandleFunc("/health", ls.handleHealthCheck)

	var handler http.Handler = mux
	handler = ls.corsMiddleware(handler)
	handler = ls.requestLoggingMiddleware(handler)
	handler = ls.panicRecoveryMiddleware(handler)
	return handler
}

// Start starts the server and blocks until it stops. It returns nil after a
// graceful Shutdown.
func (ls *LyricsServer) Start() error {
	if ls.config.Server.WatchConfig && ls.configPath != "" {
		if err := ls.startConfigWatcher(); err != nil {
			ls.logger.WithError(err).Warn("Could not start config watcher")
		}
	}

	localAddress := fmt.Sprintf("http://%s", ls.config.GetAddress())

	ls.logger.WithFields(logrus.Fields{
		"address":  localAddress,
		"upstream": ls.config.Upstream.BaseURL,
		"timeout":  ls.lyrics.Timeout(),
	}).Info("Lyrify server starting")

	// Start ngrok tunnel if enabled
	if ls.ngrokService != nil {
		if err := ls.ngrokService.StartTunnel(context.Background(), localAddress); err != nil {
			ls.logger.WithError(err).Warn("Could not start ngrok tunnel")
		}
	}

	ls.httpServer = &http.Server{
		Addr:         ls.config.GetAddress(),
		Handler:      ls.Handler(),
		ReadTimeout:  time.Duration(ls.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(ls.config.Server.WriteTimeout) * time.Second,
	}

	if err := ls.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (ls *LyricsServer) Shutdown(ctx context.Context) error {
	ls.logger.Info("Shutting down lyrics server...")

	ls.stopConfigWatcher()

	if err := ls.ngrokService.Stop(); err != nil {
		ls.logger.WithError(err).Warn("Error stopping ngrok tunnel")
	}

	if ls.httpServer != nil {
		if err := ls.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
	}

	ls.logger.Info("Lyrics server shutdown complete")
	return nil
}
