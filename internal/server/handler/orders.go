package handler

import (
	"log/slog"
	"net/http"

	"github.com/avierra/futmon/internal/domain"
	"github.com/avierra/futmon/internal/service"
)

// maxOrderHistoryLimit caps the number of orders a single request may ask
// the exchange for.
const maxOrderHistoryLimit = 500

// OrderHandler serves standard-contract order history fetched on demand
// from the exchange.
type OrderHandler struct {
	session      *service.Session
	defaultLimit int
	logger       *slog.Logger
}

// NewOrderHandler creates an OrderHandler with the given default page size.
func NewOrderHandler(session *service.Session, defaultLimit int, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		session:      session,
		defaultLimit: defaultLimit,
		logger:       logHandler(logger, "orders"),
	}
}

// GetHistory responds with recent standard-contract orders.
// GET /api/orders/history?limit=N
func (h *OrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, h.defaultLimit, maxOrderHistoryLimit)

	orders, err := h.session.OrderHistory(r.Context(), limit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "order history fetch failed",
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.OrderRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}
