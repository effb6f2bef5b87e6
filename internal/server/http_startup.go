package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"growthos/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// Start starts the HTTP server with all configured components and blocks until shutdown
func (s *Server) Start() error {
	if s.Observability == nil {
		om, err := s.initializeObservability()
		if err != nil {
			return err
		}
		s.Observability = om
	}
	defer s.shutdownObservability()

	httpServer := s.setupHTTPServer()
	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.Manager, error) {
	settings := observability.SettingsFromConfig(s.AppConfig, s.Version)
	om, err := observability.NewManager(settings, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Observability.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.releaseResources()
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown drains in-flight requests, then releases shared clients
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server...")
	err := server.Shutdown(shutdownCtx)
	if err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		err = server.Close()
	}

	s.releaseResources()
	if err == nil {
		s.Logger.Info("Server shutdown completed successfully")
	}
	return err
}

// releaseResources stops background workers and closes the shared clients
func (s *Server) releaseResources() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
	if s.Prompts != nil {
		if err := s.Prompts.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop prompt watcher")
		}
	}
	if err := s.AI.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close AI provider")
	}
	if err := s.Store.Close(); err != nil {
		s.Logger.LogError(err, "Failed to close store")
	}
}
