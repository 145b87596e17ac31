package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JossueJativa/websocket/internal/service"
	"github.com/JossueJativa/websocket/pkg/httputil"
)

// OrderHandler serves the read-only REST surface. Displays use it to bootstrap
// a desk's line list before their WebSocket subscription is up.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// GetDeskOrders handles GET /api/v1/desks/{deskID}/orders
func (h *OrderHandler) GetDeskOrders(w http.ResponseWriter, r *http.Request) {
	deskID, ok := httputil.ParseID(w, chi.URLParam(r, "deskID"))
	if !ok {
		return
	}

	details, err := h.service.GetOrders(r.Context(), deskID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: details})
}
