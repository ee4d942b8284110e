// Package api exposes the assistant over HTTP.
//
// Endpoints:
//
//	POST   /api/chat                    answer a question within a session
//	GET    /api/tools                   list registered retrieval tools
//	GET    /api/sessions/{id}/history   conversation history for a session
//	DELETE /api/sessions/{id}           drop a session and its history
//	GET    /health                      liveness probe
//	GET    /ready                       readiness probe (database + index)
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ramdanisyaputra/ai-laravel-docs/internal/orchestrator"
	"github.com/ramdanisyaputra/ai-laravel-docs/internal/tools"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8717"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to prevent slowloris-style
	// connection hoarding.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because one chat request fans out into
	// several model calls.
	WriteTimeout = 5 * time.Minute

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Assistant is the orchestrator capability the API serves.
// Implemented by orchestrator.Orchestrator.
type Assistant interface {
	Answer(ctx context.Context, sessionID, question string) (orchestrator.Result, error)
	Tools() []tools.Tool
	Sessions() *orchestrator.Sessions
}

// Server is the HTTP server for the assistant's REST API.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer creates a server with all routes registered. pinger may be
// nil when no database readiness check is wanted.
func NewServer(assistant Assistant, pinger Pinger, readier Readier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{mux: mux, logger: logger}

	newChatHandler(assistant, logger).registerRoutes(mux)
	newToolsHandler(assistant).registerRoutes(mux)
	newSessionHandler(assistant, logger).registerRoutes(mux)
	newHealthHandler(pinger, readier, logger).registerRoutes(mux)

	return s
}

// Handler returns the handler with middleware applied, recovery outermost.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware(s.logger), loggingMiddleware(s.logger))
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
