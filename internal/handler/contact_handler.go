package handler

import (
	"net/http"
	"strings"

	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/service"
)

// Contact listing page sizes.
const (
	defaultContactLimit = 20
	maxContactLimit     = 100
)

// ContactHandler handles contact form submission and admin management.
type ContactHandler struct {
	contactService service.ContactService
	trustedProxies int
}

// NewContactHandler creates a ContactHandler. trustedProxies is the number
// of reverse proxies whose X-Forwarded-For entries are trusted.
func NewContactHandler(contactService service.ContactService, trustedProxies int) *ContactHandler {
	return &ContactHandler{contactService: contactService, trustedProxies: trustedProxies}
}

type contactSubmitResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ContactID string `json:"contactId"`
}

// Submit handles POST /api/public/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.ContactInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	msg, err := h.contactService.Submit(r.Context(), req, intake.ClientIP(r, h.trustedProxies))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contactSubmitResponse{
		Success:   true,
		Message:   "Thank you for reaching out. We will be in touch soon.",
		ContactID: msg.ID,
	})
}

type contactListResponse struct {
	Contacts   []*model.ContactMessage `json:"contacts"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	Total      int                     `json:"total"`
	TotalPages int                     `json:"totalPages"`
}

// AdminList handles GET /api/admin/contacts?search=&status=&page=&limit=.
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, defaultContactLimit, maxContactLimit)
	q := r.URL.Query()
	opts := model.ContactListOptions{
		Status: q.Get("status"),
		Query:  strings.TrimSpace(q.Get("search")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	contacts, total, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contactListResponse{
		Contacts:   contacts,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pageCount(total, limit),
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/admin/contacts/{id}.
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	contact, err := h.contactService.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "contact": contact})
}

// Delete handles DELETE /api/admin/contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contactService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Contact deleted."})
}
