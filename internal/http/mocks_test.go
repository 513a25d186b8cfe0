package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/order"
)

// --- order repository mock ---

type OrderRepoMock struct {
	orders map[uuid.UUID]*domain.Order
	err    error
	events []string
}

func newOrderRepoMock() *OrderRepoMock {
	return &OrderRepoMock{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *OrderRepoMock) CreateAddress(ctx context.Context, address *domain.Address) error {
	return m.err
}

func (m *OrderRepoMock) CreateOrderWithItems(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *OrderRepoMock) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (m *OrderRepoMock) GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *OrderRepoMock) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []*domain.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (m *OrderRepoMock) UpdatePaymentByTransactionID(ctx context.Context, transactionID string, status domain.PaymentStatus) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.TransactionID == transactionID {
			o.PaymentStatus = status
			if status == domain.PaymentStatusApproved && o.Status == domain.OrderStatusPending {
				o.Status = domain.OrderStatusPaid
			}
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *OrderRepoMock) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return order.ErrInvalidTransition
	}
	o.Status = to
	return nil
}

func (m *OrderRepoMock) InsertOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	m.events = append(m.events, eventType)
	return nil
}

func (m *OrderRepoMock) GetUnprocessedEvents(ctx context.Context, limit int) ([]*order.OutboxEvent, error) {
	return nil, nil
}

func (m *OrderRepoMock) MarkEventAsProcessed(ctx context.Context, id int64) error { return nil }

func (m *OrderRepoMock) GetApprovedUnpaidOrders(ctx context.Context) ([]*domain.Order, error) {
	return nil, nil
}

func (m *OrderRepoMock) Close() error { return nil }

func (m *OrderRepoMock) RunMigrations(*order.Credentials) error { return nil }

// --- checkout service mock ---

type CheckoutServiceMock struct {
	result      *checkout.Result
	err         error
	lastRequest *checkout.Request
}

func (m *CheckoutServiceMock) Checkout(ctx context.Context, request *checkout.Request) (*checkout.Result, error) {
	m.lastRequest = request
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// --- catalog mocks ---

type CatalogRepoMock struct {
	products map[string]*catalog.Product
	err      error
	calls    int
}

func (m *CatalogRepoMock) GetAllProducts(ctx context.Context) ([]*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []*catalog.Product
	for _, p := range m.products {
		result = append(result, p)
	}
	return result, nil
}

func (m *CatalogRepoMock) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (m *CatalogRepoMock) Close() error { return nil }

func (m *CatalogRepoMock) RunMigrations(string) error { return nil }

type CacheMock struct {
	products map[string]*catalog.Product
	sets     int
}

func newCacheMock() *CacheMock {
	return &CacheMock{products: make(map[string]*catalog.Product)}
}

func (m *CacheMock) Get(ctx context.Context, productID string) (*catalog.Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, catalog.ErrCacheMiss
	}
	return p, nil
}

func (m *CacheMock) Set(ctx context.Context, product *catalog.Product) error {
	m.sets++
	m.products[product.ID] = product
	return nil
}

func (m *CacheMock) Delete(ctx context.Context, productID string) error {
	delete(m.products, productID)
	return nil
}

// --- helpers ---

func withCustomer(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), "customer_id", "cust-1")
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
