package handler

import (
	"net/http"
	"strings"

	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/service"
)

// ArticleHandler serves the admin article endpoints. Articles are addressed
// by slug.
type ArticleHandler struct {
	articles service.ArticleService
}

// NewArticleHandler creates an ArticleHandler.
func NewArticleHandler(articles service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// List handles GET /api/admin/articles?q=&status=&category=&page=&limit=.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.articles.List(r.Context(), service.ArticleQuery{
		Query:    strings.TrimSpace(q.Get("q")),
		Status:   strings.TrimSpace(q.Get("status")),
		Category: strings.TrimSpace(q.Get("category")),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/admin/articles/{slug}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.articles.Get(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create handles POST /api/admin/articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ArticlePatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.articles.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update handles PUT /api/admin/articles/{slug}.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ArticlePatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.articles.Update(r.Context(), r.PathValue("slug"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/admin/articles/{slug}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(r.Context(), r.PathValue("slug")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
