package api

import "net/http"

// toolsHandler serves the tool listing endpoint.
type toolsHandler struct {
	assistant Assistant
}

func newToolsHandler(assistant Assistant) *toolsHandler {
	return &toolsHandler{assistant: assistant}
}

func (h *toolsHandler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tools", h.list)
}

// ToolInfo describes one registered tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *toolsHandler) list(w http.ResponseWriter, _ *http.Request) {
	registered := h.assistant.Tools()
	infos := make([]ToolInfo, 0, len(registered))
	for _, t := range registered {
		infos = append(infos, ToolInfo{Name: t.Name(), Description: t.Description()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": infos, "total": len(infos)})
}
