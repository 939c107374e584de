package handler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/service"
)

// Popup lead listing page sizes.
const (
	defaultLeadLimit = 20
	maxLeadLimit     = 100
)

// PopupHandler serves the lead-capture popup, its admin console and the
// captured leads.
type PopupHandler struct {
	popups         service.PopupService
	trustedProxies int
	now            func() time.Time
}

// NewPopupHandler creates a PopupHandler.
func NewPopupHandler(popups service.PopupService, trustedProxies int) *PopupHandler {
	return &PopupHandler{popups: popups, trustedProxies: trustedProxies, now: time.Now}
}

// Active handles GET /api/public/popup/active. No active popup is not an
// error: the body is {"popup": null}.
func (h *PopupHandler) Active(w http.ResponseWriter, r *http.Request) {
	p, err := h.popups.Active(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var public *model.PublicPopup
	if p != nil {
		public = p.Public()
	}
	writeJSON(w, http.StatusOK, map[string]*model.PublicPopup{"popup": public})
}

type popupSubmitRequest struct {
	Email   string `json:"email"`
	PopupID string `json:"popupId"`
}

type popupSubmitResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
	PDFTitle    string `json:"pdfTitle"`
	LeadID      string `json:"leadId"`
}

// Submit handles POST /api/public/popup/submit.
func (h *PopupHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req popupSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := h.popups.Submit(r.Context(), service.PopupSubmitInput{
		Email:     req.Email,
		PopupID:   req.PopupID,
		ClientIP:  intake.ClientIP(r, h.trustedProxies),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "Success! Check your email for the download link."
	if sub.Repeat {
		msg = "Download link sent again!"
	}
	writeJSON(w, http.StatusOK, popupSubmitResponse{
		Success:     true,
		Message:     msg,
		DownloadURL: sub.DownloadURL,
		PDFTitle:    sub.PDFTitle,
		LeadID:      sub.LeadID,
	})
}

// List handles GET /api/admin/popups.
func (h *PopupHandler) List(w http.ResponseWriter, r *http.Request) {
	popups, err := h.popups.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]*model.Popup{"popups": popups})
}

// Get handles GET /api/admin/popups/{id}. The response carries the lead
// count.
func (h *PopupHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.popups.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /api/admin/popups.
func (h *PopupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PopupPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.popups.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PUT /api/admin/popups/{id}.
func (h *PopupHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.PopupPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.popups.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/admin/popups/{id}. The popup's leads go with
// it.
func (h *PopupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.popups.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Popup deleted."})
}

type leadListResponse struct {
	Leads      []*model.PopupLead `json:"leads"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int                `json:"total"`
	TotalPages int                `json:"totalPages"`
}

// ListLeads handles GET /api/admin/popup-leads?popupId=&search=&page=&limit=.
func (h *PopupHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, defaultLeadLimit, maxLeadLimit)
	q := r.URL.Query()
	leads, total, err := h.popups.ListLeads(r.Context(), model.PopupLeadListOptions{
		PopupID: q.Get("popupId"),
		Search:  strings.ToLower(strings.TrimSpace(q.Get("search"))),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leadListResponse{
		Leads:      leads,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pageCount(total, limit),
	})
}

var leadCSVHeader = []string{"Email", "Popup Name", "Popup Title", "Status", "IP Address", "Submitted At"}

// ExportLeads handles GET /api/admin/popup-leads/export?popupId=, streaming
// every matching lead as a CSV attachment.
func (h *PopupHandler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.popups.ExportLeads(r.Context(), r.URL.Query().Get("popupId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := "popup-leads-" + h.now().UTC().Format(time.DateOnly) + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(leadCSVHeader)
	for _, l := range leads {
		_ = cw.Write([]string{
			l.Email,
			orUnknown(l.PopupName),
			orUnknown(l.PopupTitle),
			l.Status,
			orDefault(l.IPAddress, "N/A"),
			l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("lead export write failed", "error", err)
	}
}

// DeleteLead handles DELETE /api/admin/popup-leads/{id}.
func (h *PopupHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	if err := h.popups.DeleteLead(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Lead deleted."})
}

func orUnknown(s string) string { return orDefault(s, "Unknown") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
