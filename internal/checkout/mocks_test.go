package checkout

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/gateway"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/google/uuid"
)

// MockVerifier implements Verifier for testing
type MockVerifier struct {
	Items []domain.VerifiedItem
	Total int64
	Err   error
	Calls int
}

func (m *MockVerifier) Verify(_ context.Context, _ []domain.CartLine) ([]domain.VerifiedItem, int64, error) {
	m.Calls++
	if m.Err != nil {
		return nil, 0, m.Err
	}
	return m.Items, m.Total, nil
}

// MockCharger implements Charger for testing
type MockCharger struct {
	Result      *gateway.ChargeResult
	Err         error
	Calls       int
	LastRequest *gateway.ChargeRequest
}

func (m *MockCharger) Charge(_ context.Context, request *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	m.Calls++
	m.LastRequest = request
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// MockRepository implements order.RepoInterface for testing
type MockRepository struct {
	CreatedAddress   *domain.Address
	CreatedOrder     *domain.Order
	AddressErr       error
	OrderErr         error
	OutboxEventTypes []string
}

func (m *MockRepository) CreateAddress(_ context.Context, address *domain.Address) error {
	if m.AddressErr != nil {
		return m.AddressErr
	}
	m.CreatedAddress = address
	return nil
}

func (m *MockRepository) CreateOrderWithItems(_ context.Context, o *domain.Order) (*domain.Order, error) {
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	m.CreatedOrder = o
	return o, nil
}

func (m *MockRepository) GetOrderByID(context.Context, uuid.UUID) (*domain.Order, error) {
	return m.CreatedOrder, nil
}

func (m *MockRepository) GetOrderByReference(context.Context, string) (*domain.Order, error) {
	return m.CreatedOrder, nil
}

func (m *MockRepository) ListOrdersByCustomer(context.Context, string) ([]*domain.Order, error) {
	return nil, nil
}

func (m *MockRepository) UpdatePaymentByTransactionID(context.Context, string, domain.PaymentStatus) (*domain.Order, error) {
	return nil, order.ErrOrderNotFound
}

func (m *MockRepository) UpdateOrderStatus(context.Context, uuid.UUID, domain.OrderStatus, domain.OrderStatus) error {
	return nil
}

func (m *MockRepository) InsertOutboxEvent(_ context.Context, _ string, eventType string, _ []byte) error {
	m.OutboxEventTypes = append(m.OutboxEventTypes, eventType)
	return nil
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*order.OutboxEvent, error) {
	return nil, nil
}

func (m *MockRepository) MarkEventAsProcessed(context.Context, int64) error { return nil }

func (m *MockRepository) GetApprovedUnpaidOrders(context.Context) ([]*domain.Order, error) {
	return nil, nil
}

func (m *MockRepository) Close() error { return nil }

func (m *MockRepository) RunMigrations(*order.Credentials) error { return nil }
