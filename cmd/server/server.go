package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/phrazzld/flashgen/internal/api"
	"github.com/phrazzld/flashgen/internal/app"
)

// Server timeouts. Generation requests make several backend calls, so the
// write timeout is generous.
const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 5 * time.Minute
)

// server owns the HTTP listener and the application it serves.
type server struct {
	app  *app.Application
	http *http.Server
}

func newServer(a *app.Application) *server {
	router := api.NewRouter(api.RouterConfig{
		FlashcardService: a.Service,
		Jobs:             a.Runner,
		Backend:          api.BackendInfo{Provider: a.Backend.Name(), Model: a.Backend.Model()},
		APIKey:           a.Config.Server.APIKey,
		CORSOrigins:      a.Config.Server.CORSOrigins,
		Logger:           a.Logger,
	})

	return &server{
		app: a,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			ErrorLog:          slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
		},
	}
}

// Run listens on the configured port and blocks until ctx is cancelled or the
// listener fails.
func (s *server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		_ = s.app.Close(ctx)
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully:
// in-flight requests and queued jobs get shutdownTimeout to finish.
func (s *server) Serve(ctx context.Context, ln net.Listener) error {
	log := s.app.Logger

	s.app.Runner.Start()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case err := <-serveErr:
		if err != nil {
			log.Error("server failed", slog.String("error", err.Error()))
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}
	if err := s.app.Close(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("application cleanup failed: %w", err)
	}

	log.Info("server shutdown completed")
	return runErr
}
