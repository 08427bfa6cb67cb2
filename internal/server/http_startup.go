package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"essaylens/internal/backend"
	"essaylens/internal/common"
	"essaylens/internal/export"
	"essaylens/internal/observability"
)

// Start starts the HTTP server with all configured components
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)
	s.om = om

	s.initializeCollaborators()

	if err := s.startResultWatcher(); err != nil {
		return err
	}

	httpServer := s.setupHTTPServer()
	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// initializeCollaborators builds the backend client and export pipeline
// from configuration unless they were injected.
func (s *Server) initializeCollaborators() {
	if s.Backend == nil {
		s.Backend = backend.NewClient(s.AppConfig.Backend, s.Logger,
			backend.WithTracker(s.om),
			backend.WithStateObserver(func(name, from, to string) {
				s.om.RecordCircuitStateChange(context.Background(), name, from, to)
			}),
			backend.WithMaxUploadSize(s.AppConfig.App.MaxFileSize),
		)
	}
	if s.Pipeline == nil {
		s.Pipeline = export.NewPipeline(export.ConfigFrom(s.AppConfig.Export, s.Logger))
	}
}

// startResultWatcher loads the watched result once and reloads it on change
func (s *Server) startResultWatcher() error {
	if s.WatchFile == "" {
		return nil
	}

	s.reloadResultFile()

	watcher, err := NewResultWatcher(s.WatchFile, s.WatchDebounce, s.reloadResultFile, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to create result watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start result watcher: %w", err)
	}
	s.watcher = watcher
	return nil
}

// reloadResultFile displays the watched file. A deleted file clears the
// report; an unreadable one keeps what is shown.
func (s *Server) reloadResultFile() {
	if _, err := os.Stat(s.WatchFile); os.IsNotExist(err) {
		s.SetDisplayed(nil)
		s.Logger.Info("Watched result file is gone, report cleared", "file", s.WatchFile)
		return
	}

	result, err := common.NewFileProcessor(s.Logger).ReadResult(s.WatchFile)
	if err != nil {
		s.Logger.LogError(err, "Failed to reload result file, keeping the current report", "file", s.WatchFile)
		return
	}
	s.SetDisplayed(result)
	s.Logger.Info("Displayed result replaced",
		"source", "watch",
		"file", s.WatchFile,
		"score", result.OverallScore)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
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
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())

		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop result watcher")
		}
	}

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanupRateLimiter cleans up the rate limiter resources
func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
