package handler

import (
	"net/http"

	"github.com/avierra/futmon/internal/service"
)

// ReportHandler serves the full consolidated report and the derived PnL
// summary.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetReport responds with the latest consolidated report.
// GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Latest()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetStatsSummary responds with the aggregate PnL statistics derived from
// the latest report.
// GET /api/stats/summary
func (h *ReportHandler) GetStatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Stats()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
