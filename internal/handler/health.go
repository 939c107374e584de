package handler

import (
	"context"
	"net/http"
	"time"
)

// AppName identifies the service in health and version responses.
const AppName = "uxdesignjournal-backend"

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and version probes.
type HealthHandler struct {
	db      Pinger
	version string
	commit  string
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. commit may be empty.
func NewHealthHandler(db Pinger, version, commit string) *HealthHandler {
	return &HealthHandler{db: db, version: version, commit: commit, started: time.Now(), now: time.Now}
}

type healthResponse struct {
	OK      bool    `json:"ok"`
	Status  string  `json:"status"`
	Uptime  float64 `json:"uptime"`
	Message string  `json:"message,omitempty"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := h.now().Sub(h.started).Seconds()
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status:  "unhealthy",
				Uptime:  uptime,
				Message: err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Status: "ok", Uptime: uptime})
}

type versionResponse struct {
	App     string  `json:"app"`
	Version string  `json:"version"`
	Commit  *string `json:"commit"`
	Now     string  `json:"now"`
}

// Version handles GET /api/public/version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	resp := versionResponse{
		App:     AppName,
		Version: h.version,
		Now:     h.now().UTC().Format(time.RFC3339),
	}
	if h.commit != "" {
		resp.Commit = &h.commit
	}
	writeJSON(w, http.StatusOK, resp)
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"app": AppName, "status": "running"})
}
