package order

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition means the requested fulfillment transition is not
	// in the state machine, or the row moved underneath the request.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a to-be-published order lifecycle event, written in the
// same transaction as the state change it describes.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

const (
	EventOrderCreated        = "order.created"
	EventOrderPaymentUpdated = "order.payment_updated"
	EventOrderStatusChanged  = "order.status_changed"
	// EventOrderReconcile flags an anomaly for manual operator reconciliation:
	// a webhook for an unknown transaction, or a partial persistence failure
	// after money moved.
	EventOrderReconcile = "order.reconcile"
)

type RepoInterface interface {
	CreateAddress(ctx context.Context, address *domain.Address) error
	// CreateOrderWithItems writes the order header and its line items in one
	// transaction, idempotently keyed by reference: on a duplicate reference
	// the previously stored order is returned.
	CreateOrderWithItems(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error)
	// UpdatePaymentByTransactionID overwrites the payment status of the order
	// matched by transaction id. Idempotent; ErrOrderNotFound when no row matches.
	UpdatePaymentByTransactionID(ctx context.Context, transactionID string, status domain.PaymentStatus) (*domain.Order, error)
	// UpdateOrderStatus moves fulfillment status from "from" to "to",
	// conditioned on the row still being in "from".
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
	InsertOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	// GetApprovedUnpaidOrders returns orders whose payment settled as APPROVED
	// but whose fulfillment status is still PENDING (missed auto-advance).
	GetApprovedUnpaidOrders(ctx context.Context) ([]*domain.Order, error)
	Close() error
	RunMigrations(*Credentials) error
}
