package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"mercator-hq/ganymede/pkg/assets"
	"mercator-hq/ganymede/pkg/auth"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/environment"
	"mercator-hq/ganymede/pkg/gitws"
	"mercator-hq/ganymede/pkg/resolve"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// shutdownTimeout bounds graceful shutdown; in-flight requests past it
// are dropped.
const shutdownTimeout = 10 * time.Second

// Server is the Ganymede HTTP server.
type Server struct {
	cfg       *config.Config
	registry  *environment.Registry
	engine    *resolve.Engine
	assets    *assets.Service
	gate      *auth.Gate
	wsManager *gitws.Manager
	collector *metrics.Collector

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	logger       *slog.Logger
}

// NewServer assembles a server from the startup-built components.
func NewServer(
	cfg *config.Config,
	registry *environment.Registry,
	wsManager *gitws.Manager,
	gate *auth.Gate,
	collector *metrics.Collector,
) *Server {
	return &Server{
		cfg:          cfg,
		registry:     registry,
		engine:       resolve.NewEngine(registry),
		assets:       assets.NewService(registry),
		gate:         gate,
		wsManager:    wsManager,
		collector:    collector,
		shutdownChan: make(chan struct{}),
		logger:       slog.Default().With("component", "server"),
	}
}

// Start starts the HTTP listener and blocks until shutdown, triggered
// by context cancellation, SIGINT/SIGTERM, or RequestShutdown.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.HTTP.BindAddr,
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("listening",
			"address", s.cfg.HTTP.BindAddr,
			"base_path", normalizeBasePath(s.cfg.HTTP.BasePath),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// RequestShutdown asks a running server to stop.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully stops the HTTP listener and the refresh
// scheduler. An in-flight refresh completes before Stop returns.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error("error during server shutdown", "error", shutdownErr)
			err = fmt.Errorf("server shutdown error: %w", shutdownErr)
		}
	}
	s.wsManager.StopRefresher()
	s.logger.Info("shutdown complete")
	return err
}
