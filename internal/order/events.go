package order

import (
	"encoding/json"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

type orderEvent struct {
	OrderID       string             `json:"order_id"`
	CustomerID    string             `json:"customer_id"`
	Reference     string             `json:"reference"`
	TransactionID string             `json:"transaction_id"`
	TotalAmount   int64              `json:"total_amount"`
	Currency      string             `json:"currency"`
	PaymentStatus string             `json:"payment_status"`
	Status        string             `json:"status"`
	Items         []domain.OrderItem `json:"items,omitempty"`
}

// MarshalOrderEvent renders the outbox payload for an order lifecycle event.
func MarshalOrderEvent(o *domain.Order) ([]byte, error) {
	payload, err := json.Marshal(orderEvent{
		OrderID:       o.ID.String(),
		CustomerID:    o.CustomerID,
		Reference:     o.Reference,
		TransactionID: o.TransactionID,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		PaymentStatus: string(o.PaymentStatus),
		Status:        string(o.Status),
		Items:         o.Items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	return payload, nil
}

// ReconcilePayload describes an anomaly for the operator queue.
type ReconcilePayload struct {
	Reason        string `json:"reason"`
	Reference     string `json:"reference,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Detail        string `json:"detail,omitempty"`
}

func MarshalReconcile(p ReconcilePayload) []byte {
	payload, err := json.Marshal(p)
	if err != nil {
		// struct of strings, cannot fail
		return []byte(fmt.Sprintf(`{"reason":%q}`, p.Reason))
	}
	return payload
}
