package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRepository implements RepoInterface for testing
type MockRepository struct {
	Products map[string]*Product
	Err      error
}

func (m *MockRepository) GetAllProducts(_ context.Context) ([]*Product, error) {
	var products []*Product
	for _, p := range m.Products {
		products = append(products, p)
	}
	return products, m.Err
}

func (m *MockRepository) GetProduct(_ context.Context, id string) (*Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (m *MockRepository) Close() error { return nil }

func (m *MockRepository) RunMigrations(string) error { return nil }

func inStock(id string, price int64) *Product {
	return &Product{
		ID:    id,
		Name:  "Product " + id,
		Slug:  "product-" + id,
		Price: price,
		Stock: StockStatusInStock,
	}
}

func TestVerify_IgnoresClientPrice(t *testing.T) {
	mock := &MockRepository{Products: map[string]*Product{
		"p1": inStock("p1", 10000),
	}}
	v := NewVerifier(mock)

	// Client claims the product costs 1 minor unit. The catalog wins.
	lines := []domain.CartLine{{ProductID: "p1", Quantity: 2, ClientPrice: 1}}

	items, total, err := v.Verify(context.Background(), lines)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(20000), total)
	assert.Equal(t, int64(10000), items[0].UnitPrice)
}

func TestVerify_MultipleLines(t *testing.T) {
	mock := &MockRepository{Products: map[string]*Product{
		"p1": inStock("p1", 10000),
		"p2": inStock("p2", 2500),
	}}
	v := NewVerifier(mock)

	lines := []domain.CartLine{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 4},
	}

	items, total, err := v.Verify(context.Background(), lines)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(20000), total)
}

func TestVerify_UnknownProduct(t *testing.T) {
	mock := &MockRepository{Products: map[string]*Product{}}
	v := NewVerifier(mock)

	_, _, err := v.Verify(context.Background(), []domain.CartLine{{ProductID: "ghost", Quantity: 1}})

	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestVerify_OutOfStock(t *testing.T) {
	p := inStock("p1", 10000)
	p.Stock = StockStatusOutOfStock
	mock := &MockRepository{Products: map[string]*Product{"p1": p}}
	v := NewVerifier(mock)

	_, _, err := v.Verify(context.Background(), []domain.CartLine{{ProductID: "p1", Quantity: 1}})

	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestVerify_EmptyCart(t *testing.T) {
	v := NewVerifier(&MockRepository{})

	_, _, err := v.Verify(context.Background(), nil)

	assert.Error(t, err)
}

func TestVerify_NonPositiveQuantity(t *testing.T) {
	mock := &MockRepository{Products: map[string]*Product{"p1": inStock("p1", 10000)}}
	v := NewVerifier(mock)

	_, _, err := v.Verify(context.Background(), []domain.CartLine{{ProductID: "p1", Quantity: 0}})

	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestVerify_RepositoryError(t *testing.T) {
	mock := &MockRepository{Err: errors.New("db down")}
	v := NewVerifier(mock)

	_, _, err := v.Verify(context.Background(), []domain.CartLine{{ProductID: "p1", Quantity: 1}})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductUnavailable)
}
