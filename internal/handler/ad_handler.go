package handler

import (
	"net/http"

	"github.com/uxdj/backend/internal/service"
)

// AdHandler serves the admin ad endpoints.
type AdHandler struct {
	ads service.AdService
}

// NewAdHandler creates an AdHandler.
func NewAdHandler(ads service.AdService) *AdHandler {
	return &AdHandler{ads: ads}
}

// List handles GET /api/admin/ads?placement=.
func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	ads, err := h.ads.List(r.Context(), r.URL.Query().Get("placement"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ads)
}

// Create handles POST /api/admin/ads.
func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.AdInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ad, err := h.ads.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

// Update handles PUT /api/admin/ads/{id}.
func (h *AdHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.AdInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ad, err := h.ads.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

// Delete handles DELETE /api/admin/ads/{id}.
func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ads.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
