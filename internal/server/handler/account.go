package handler

import (
	"net/http"

	"github.com/avierra/futmon/internal/domain"
	"github.com/avierra/futmon/internal/service"
)

// AccountHandler serves per-account balance and position views taken from
// the latest consolidated report.
type AccountHandler struct {
	reports *service.ReportService
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(reports *service.ReportService) *AccountHandler {
	return &AccountHandler{reports: reports}
}

// GetBalance responds with the balance section for one account family.
// GET /api/balance/{account}
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountType, ok := accountParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown account type")
		return
	}

	section, _, err := h.reports.Section(accountType)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := map[string]any{
		"account_type": string(accountType),
		"status":       string(section.Status),
		"balance":      section.Balance,
	}
	if section.Status == domain.SectionUnavailable {
		resp["failure_kind"] = string(section.FailureKind)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPositions responds with open positions for one account family.
// GET /api/positions/{account}
func (h *AccountHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	accountType, ok := accountParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown account type")
		return
	}

	section, positions, err := h.reports.Section(accountType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if positions == nil {
		positions = []domain.Position{}
	}

	resp := map[string]any{
		"account_type": string(accountType),
		"status":       string(section.Status),
		"positions":    positions,
		"count":        len(positions),
	}
	if section.Status == domain.SectionUnavailable {
		resp["failure_kind"] = string(section.FailureKind)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPositions responds with all open positions across both account
// families, sorted with perpetual positions first.
// GET /api/positions
func (h *AccountHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Latest()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	positions := report.Positions
	if positions == nil {
		positions = []domain.Position{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"positions": positions,
		"count":     len(positions),
		"partial":   report.Partial,
		"stale":     report.Stale,
	})
}
