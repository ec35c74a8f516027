package handler

import (
	"net/http"

	"github.com/avierra/futmon/internal/service"
)

// RefreshHandler triggers on-demand refresh cycles.
type RefreshHandler struct {
	reports *service.ReportService
}

// NewRefreshHandler creates a RefreshHandler.
func NewRefreshHandler(reports *service.ReportService) *RefreshHandler {
	return &RefreshHandler{reports: reports}
}

// TriggerRefresh requests an immediate refresh cycle and returns without
// waiting for it. Requests arriving while a cycle is already running are
// coalesced into at most one follow-up cycle.
// POST /api/refresh
func (h *RefreshHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.reports.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "refresh requested",
	})
}
