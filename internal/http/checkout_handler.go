package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/gateway"
	"github.com/fjod/go_storefront/internal/payment"
)

type CheckoutHandler struct {
	service checkout.CheckoutService
	timeout time.Duration
}

func NewCheckoutHandler(service checkout.CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
	}
}

type CartLineDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	// Price is display data from the frontend; totals are always recomputed
	// from the catalog.
	Price int64 `json:"price"`
}

type CheckoutRequestDTO struct {
	Items   []CartLineDTO         `json:"items"`
	Payment payment.MethodRequest `json:"payment"`
	// CustomerID is honored only when no authenticated customer is on the
	// request; a session always wins over the body.
	CustomerID      string                `json:"customer_id,omitempty"`
	CustomerEmail   string                `json:"customer_email"`
	Address         checkout.AddressInput `json:"address"`
	AcceptanceToken string                `json:"acceptance_token"`
	SessionID       string                `json:"session_id,omitempty"`
}

type CheckoutResponseDTO struct {
	Success       bool             `json:"success"`
	Order         OrderResponseDTO `json:"order"`
	GatewayStatus string           `json:"gateway_status"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	customerID := getCustomerIDFromContext(r.Context())
	if customerID == "" {
		customerID = req.CustomerID
	}
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "at least one item is required")
		return
	}
	if req.CustomerEmail == "" {
		respondError(w, http.StatusBadRequest, "missing_email", "customer_email is required")
		return
	}

	lines := make([]domain.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, domain.CartLine{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			ClientPrice: item.Price,
		})
	}

	result, err := h.service.Checkout(ctx, &checkout.Request{
		CustomerID:      customerID,
		CustomerEmail:   req.CustomerEmail,
		Lines:           lines,
		Payment:         req.Payment,
		Address:         req.Address,
		AcceptanceToken: req.AcceptanceToken,
		SessionID:       req.SessionID,
	})
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		Success:       true,
		Order:         convertOrder(result.Order),
		GatewayStatus: result.GatewayStatus,
	})
}

func handleCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidMethod *payment.InvalidPaymentMethodError
	var rejected *gateway.RejectedError
	var persistence *checkout.PersistenceError

	switch {
	case errors.Is(err, catalog.ErrProductUnavailable):
		respondError(w, http.StatusBadRequest, "product_unavailable", err.Error())
	case errors.As(err, &invalidMethod):
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
	case errors.Is(err, payment.ErrUnsupportedPaymentMethod):
		respondError(w, http.StatusBadRequest, "unsupported_payment_method", err.Error())
	case errors.As(err, &rejected):
		respondError(w, http.StatusUnprocessableEntity, "payment_rejected", rejected.Message)
	case errors.Is(err, gateway.ErrGatewayUnreachable):
		respondError(w, http.StatusServiceUnavailable, "gateway_unreachable", "payment gateway is unavailable, please retry")
	case errors.As(err, &persistence):
		// Money moved but the order record is incomplete; the reference lets
		// support reconcile against the gateway.
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "payment accepted but order could not be saved, contact support",
			Code:    "order_persistence_failed",
			Details: persistence.Reference,
		})
	default:
		log.Printf("checkout failed: request %s: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
