package api

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger is the database connectivity check.
// Implemented by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readier reports whether the documentation index can serve searches.
// Implemented by index.Store.
type Readier interface {
	Ready(ctx context.Context) error
}

// healthHandler serves liveness and readiness probes.
type healthHandler struct {
	pinger  Pinger
	readier Readier
	logger  *slog.Logger
}

func newHealthHandler(pinger Pinger, readier Readier, logger *slog.Logger) *healthHandler {
	return &healthHandler{pinger: pinger, readier: readier, logger: logger}
}

func (h *healthHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

func (h *healthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness reports 200 only when the database answers and the index
// holds at least one chunk.
func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("readiness check failed", "check", "database", "error", err)
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
	}
	if h.readier != nil {
		if err := h.readier.Ready(r.Context()); err != nil {
			h.logger.Error("readiness check failed", "check", "index", "error", err)
			http.Error(w, "index not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
