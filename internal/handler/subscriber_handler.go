package handler

import (
	"net/http"
	"strings"

	"github.com/uxdj/backend/internal/service"
)

// SubscriberHandler handles newsletter signup and subscriber management.
type SubscriberHandler struct {
	subscribers service.SubscriberService
}

// NewSubscriberHandler creates a SubscriberHandler.
func NewSubscriberHandler(subscribers service.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers}
}

type subscribeRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Subscribe handles POST /api/public/subscribe. Repeating a signup is not an
// error.
func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	outcome, err := h.subscribers.Subscribe(r.Context(), req.Email, req.Source)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: outcome.Message()})
}

// List handles GET /api/admin/subscribers?q=&page=.
func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.subscribers.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")), queryInt(r, "page"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UpdateStatus handles PUT /api/admin/subscribers/{email}.
func (h *SubscriberHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := h.subscribers.UpdateStatus(r.Context(), r.PathValue("email"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Delete handles DELETE /api/admin/subscribers/{email}.
func (h *SubscriberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.subscribers.Delete(r.Context(), r.PathValue("email")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type bulkDeleteRequest struct {
	Emails []string `json:"emails"`
}

// BulkDelete handles POST /api/admin/subscribers/bulk-delete.
func (h *SubscriberHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.subscribers.BulkDelete(r.Context(), req.Emails)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
