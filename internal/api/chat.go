package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxQuestionLength bounds the accepted question size.
const MaxQuestionLength = 4000

// chatHandler serves the question-answering endpoint.
type chatHandler struct {
	assistant Assistant
	logger    *slog.Logger
}

func newChatHandler(assistant Assistant, logger *slog.Logger) *chatHandler {
	return &chatHandler{assistant: assistant, logger: logger}
}

func (h *chatHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.chat)
}

// ChatRequest is the POST /api/chat body. SessionID is optional; a new
// session is created when it is absent.
type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId,omitempty"`
}

// ChatResponse is the POST /api/chat reply.
type ChatResponse struct {
	Answer    string   `json:"answer"`
	SessionID string   `json:"sessionId"`
	ToolsUsed []string `json:"toolsUsed,omitempty"`
	Recovered bool     `json:"recovered,omitempty"`
}

func (h *chatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if len(req.Question) > MaxQuestionLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is too long")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := h.assistant.Answer(r.Context(), sessionID, req.Question)
	if err != nil {
		if r.Context().Err() != nil {
			// Client went away; nothing useful to write.
			return
		}
		h.logger.Error("chat request failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "chat_failed", "failed to answer the question")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:    result.Answer,
		SessionID: sessionID,
		ToolsUsed: result.ToolsUsed,
		Recovered: result.Recovered,
	})
}
