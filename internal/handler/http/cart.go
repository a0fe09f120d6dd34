package http

import (
	"log/slog"
	"net/http"

	"github.com/mochaaless/p4Backend/internal/service"
	"github.com/mochaaless/p4Backend/pkg/httputil"
	"github.com/mochaaless/p4Backend/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. All cart routes are
// scoped to a user via the userId query parameter.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding an item to the cart.
// Prices and names are not accepted; carts price at checkout time.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// Get handles GET /api/v1/carts?userId=
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/carts?userId=
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), userID, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: cart})
}

// Remove handles DELETE /api/v1/carts?userId=[&productId=]
//
// With productId the single line is removed; without it the whole cart is
// cleared.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	productID := r.URL.Query().Get("productId")
	if productID == "" {
		if err := h.service.ClearCart(r.Context(), userID); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
		return
	}

	pid, ok := httputil.ParseUUID(w, productID)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), userID, pid.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}
