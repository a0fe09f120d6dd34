package http

import (
	"log/slog"
	"net/http"

	"github.com/mochaaless/p4Backend/internal/service"
	"github.com/mochaaless/p4Backend/pkg/httputil"
)

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.CheckoutService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// Checkout handles POST /api/v1/orders?userId=
//
// Converts the user's cart into an order. Returns 201 with the order on
// success, including when a retried checkout returns the already-committed
// order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// List handles GET /api/v1/orders?userId=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}
