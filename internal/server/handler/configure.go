package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/avierra/futmon/internal/service"
)

// ConfigHandler accepts exchange credentials at runtime and installs them
// into the session.
type ConfigHandler struct {
	session *service.Session
	logger  *slog.Logger
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(session *service.Session, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{session: session, logger: logHandler(logger, "config")}
}

// configRequest is the JSON body for UpdateConfig.
type configRequest struct {
	ApiKey    string `json:"api_key"`
	ApiSecret string `json:"api_secret"`
}

// UpdateConfig validates the submitted credentials against the exchange and
// swaps them into the refresh loop on success.
// POST /api/config
func (h *ConfigHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ApiKey == "" || req.ApiSecret == "" {
		writeError(w, http.StatusBadRequest, "api_key and api_secret are required")
		return
	}

	if err := h.session.Configure(r.Context(), req.ApiKey, req.ApiSecret); err != nil {
		h.logger.WarnContext(r.Context(), "credential update rejected",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "configured",
		"api_configured": true,
	})
}
