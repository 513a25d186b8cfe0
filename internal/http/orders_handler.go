package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/order"
)

type OrdersHandler struct {
	repo     order.RepoInterface
	workflow *order.Workflow
	timeout  time.Duration
}

func NewOrdersHandler(repo order.RepoInterface, workflow *order.Workflow, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		repo:     repo,
		workflow: workflow,
		timeout:  timeout,
	}
}

type OrderItemDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	ImageURL    string `json:"image_url"`
	Quantity    int32  `json:"quantity"`
	Price       int64  `json:"price"`
}

type OrderResponseDTO struct {
	ID            string         `json:"id"`
	Reference     string         `json:"reference"`
	TransactionID string         `json:"transaction_id,omitempty"`
	TotalAmount   int64          `json:"total_amount"`
	Currency      string         `json:"currency"`
	PaymentStatus string         `json:"payment_status"`
	PaymentMethod string         `json:"payment_method"`
	Status        string         `json:"status"`
	Items         []OrderItemDTO `json:"items"`
	CreatedAt     string         `json:"created_at"`
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	dtoItems := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		dtoItems = append(dtoItems, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSlug: item.ProductSlug,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	return OrderResponseDTO{
		ID:            o.ID.String(),
		Reference:     o.Reference,
		TransactionID: o.TransactionID,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		Items:         dtoItems,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customerID := getCustomerIDFromContext(r.Context())
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer authentication")
		return
	}

	orders, err := h.repo.ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list orders")
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a valid UUID")
		return
	}

	o, err := h.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(o))
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

// PATCH /api/v1/orders/{order_id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a valid UUID")
		return
	}

	var req UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	target, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	updated, err := h.workflow.Advance(ctx, orderID, target)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "not_found", "order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			respondError(w, http.StatusConflict, "invalid_transition", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to update order status")
		}
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(updated))
}
