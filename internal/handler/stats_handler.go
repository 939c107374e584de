package handler

import (
	"net/http"

	"github.com/uxdj/backend/internal/service"
)

// StatsHandler serves the admin dashboard figures.
type StatsHandler struct {
	stats service.StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Dashboard handles GET /api/admin/stats.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
