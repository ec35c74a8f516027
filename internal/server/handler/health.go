package handler

import (
	"net/http"
	"time"

	"github.com/avierra/futmon/internal/service"
)

// HealthHandler serves liveness information for load balancers and the
// dashboard.
type HealthHandler struct {
	session   *service.Session
	reports   *service.ReportService
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(session *service.Session, reports *service.ReportService, startedAt time.Time) *HealthHandler {
	return &HealthHandler{session: session, reports: reports, startedAt: startedAt}
}

// HealthCheck responds with service health and whether exchange credentials
// have been configured.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"api_configured": h.session.Configured(),
		"state":          string(h.reports.State()),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"time":           time.Now().UTC().Format(time.RFC3339),
	})
}
