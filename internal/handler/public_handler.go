package handler

import (
	"net/http"
	"strings"

	"github.com/uxdj/backend/internal/service"
)

// PublicHandler serves the read-only reader site endpoints.
type PublicHandler struct {
	public service.PublicService
}

// NewPublicHandler creates a PublicHandler.
func NewPublicHandler(public service.PublicService) *PublicHandler {
	return &PublicHandler{public: public}
}

// Categories handles GET /api/public/categories.
func (h *PublicHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.public.Categories())
}

// Homepage handles GET /api/public/homepage.
func (h *PublicHandler) Homepage(w http.ResponseWriter, r *http.Request) {
	hp, err := h.public.Homepage(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hp)
}

// Category handles GET /api/public/category/{slug}.
func (h *PublicHandler) Category(w http.ResponseWriter, r *http.Request) {
	page, err := h.public.Category(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Article handles GET /api/public/article/{slug}.
func (h *PublicHandler) Article(w http.ResponseWriter, r *http.Request) {
	a, err := h.public.Article(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Archive handles GET /api/public/archive?page=.
func (h *PublicHandler) Archive(w http.ResponseWriter, r *http.Request) {
	page, err := h.public.Archive(r.Context(), queryInt(r, "page"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /api/public/search?q=&page=.
func (h *PublicHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	page, err := h.public.Search(r.Context(), q, queryInt(r, "page"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
