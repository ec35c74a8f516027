package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avierra/futmon/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps well-known domain errors onto HTTP status codes and
// falls back to 502 for upstream faults (the exchange failed, not us).
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		writeError(w, http.StatusConflict, "exchange credentials not configured")
	case errors.Is(err, domain.ErrNoReport):
		writeError(w, http.StatusServiceUnavailable, "no report available yet")
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": err.Error(),
			"kind":  string(domain.KindOf(err)),
		})
	}
}

// parseLimit extracts the "limit" query parameter, falling back to def and
// clamping to max.
func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

// accountParam extracts the {account} path parameter and resolves it to an
// AccountType using Go 1.22+ built-in routing (http.Request.PathValue).
func accountParam(r *http.Request) (domain.AccountType, bool) {
	switch r.PathValue("account") {
	case string(domain.AccountPerpetual):
		return domain.AccountPerpetual, true
	case string(domain.AccountStandard):
		return domain.AccountStandard, true
	default:
		return "", false
	}
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}
