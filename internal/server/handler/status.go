package handler

import (
	"net/http"

	"github.com/avierra/futmon/internal/service"
)

// StatusHandler serves the monitor status for the dashboard.
type StatusHandler struct {
	mode    string
	session *service.Session
	reports *service.ReportService
}

// NewStatusHandler creates a StatusHandler with the given run mode.
func NewStatusHandler(mode string, session *service.Session, reports *service.ReportService) *StatusHandler {
	return &StatusHandler{mode: mode, session: session, reports: reports}
}

// GetStatus responds with the run mode, credential state, refresh loop state
// and metadata about the latest consolidated report.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"mode":           h.mode,
		"api_configured": h.session.Configured(),
		"state":          string(h.reports.State()),
	}

	if report, err := h.reports.Latest(); err == nil {
		resp["last_report"] = map[string]any{
			"cycle_id":     report.CycleID,
			"generated_at": report.GeneratedAt,
			"partial":      report.Partial,
			"stale":        report.Stale,
			"positions":    report.PositionCount,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
