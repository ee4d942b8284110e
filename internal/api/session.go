package api

import (
	"log/slog"
	"net/http"
	"time"
)

// sessionHandler serves session history endpoints.
type sessionHandler struct {
	assistant Assistant
	logger    *slog.Logger
}

func newSessionHandler(assistant Assistant, logger *slog.Logger) *sessionHandler {
	return &sessionHandler{assistant: assistant, logger: logger}
}

func (h *sessionHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions/{id}/history", h.history)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.delete)
}

// TurnInfo is one question/answer exchange in a session's history.
type TurnInfo struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}

func (h *sessionHandler) history(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session id is required")
		return
	}

	memory, ok := h.assistant.Sessions().Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session_not_found", "no such session")
		return
	}

	turns := memory.Turns()
	infos := make([]TurnInfo, 0, len(turns))
	for _, t := range turns {
		infos = append(infos, TurnInfo{Question: t.Question, Answer: t.Answer, At: t.At})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": id,
		"turns":     infos,
		"total":     len(infos),
	})
}

func (h *sessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session id is required")
		return
	}

	h.assistant.Sessions().Delete(id)
	h.logger.Debug("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}
