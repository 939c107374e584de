package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/uxdj/backend/internal/service"
)

// AIHandler serves AI article drafting and illustration.
type AIHandler struct {
	ai           service.AIService
	writeTimeout time.Duration
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(ai service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// WithWriteTimeout extends the response write deadline of AI routes to d,
// overriding the server-wide write timeout. Zero keeps the server default.
func (h *AIHandler) WithWriteTimeout(d time.Duration) *AIHandler {
	h.writeTimeout = d
	return h
}

func (h *AIHandler) extendDeadline(w http.ResponseWriter) {
	if h.writeTimeout <= 0 {
		return
	}
	if err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		slog.Debug("ai write deadline not extended", "error", err)
	}
}

type generateResponse struct {
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// Generate handles POST /api/admin/ai/generate. The draft is stored before
// the response is written.
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.extendDeadline(w)
	var req service.GenerateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.ai.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Slug: a.Slug, Status: a.Status})
}

// RegenerateImage handles POST /api/admin/ai/regenerate-image/{slug}. A
// failed generation still answers 200 with the placeholder and a warning.
func (h *AIHandler) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	h.extendDeadline(w)
	img, err := h.ai.RegenerateImage(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}
