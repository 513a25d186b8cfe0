package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is created right after the gateway accepts a charge attempt. Its
// payment status at that point reflects the gateway's immediate answer
// (usually PENDING), never a final outcome.
type Order struct {
	ID            uuid.UUID
	CustomerID    string
	AddressID     uuid.UUID
	TotalAmount   int64 // minor units
	Currency      string
	Reference     string
	TransactionID string
	PaymentStatus PaymentStatus
	PaymentMethod string
	Status        OrderStatus
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem carries a snapshot of the product at purchase time so later
// catalog edits don't rewrite order history.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	ImageURL    string `json:"image_url"`
	Quantity    int32  `json:"quantity"`
	Price       int64  `json:"price"` // minor units, per unit
}

type Address struct {
	ID          uuid.UUID
	CustomerID  string
	AddressLine string
	City        string
	State       string
	PostalCode  string
	Country     string
	CreatedAt   time.Time
}
