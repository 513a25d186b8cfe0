package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Repository {
	// Use in-memory database for tests
	repo, err := NewRepository(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if err := repo.RunMigrations("./migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return repo
}

func seedProduct(t *testing.T, repo *Repository, id, name, slug string, price int64, stock StockStatus) {
	t.Helper()
	_, err := repo.db.ExecContext(context.Background(),
		`INSERT INTO products (id, name, slug, price, stock) VALUES ($1, $2, $3, $4, $5)`,
		id, name, slug, price, string(stock))
	if err != nil {
		t.Fatalf("Failed to seed product: %v", err)
	}
}

func TestGetAllProducts_ReturnsSeededRows(t *testing.T) {
	repo := setupTestDB(t)
	seedProduct(t, repo, "p1", "Americano", "americano", 12500, StockStatusInStock)
	seedProduct(t, repo, "p2", "Latte", "latte", 15000, StockStatusOutOfStock)

	products, err := repo.GetAllProducts(context.Background())

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if len(products) != 2 {
		t.Errorf("Expected 2 products, got %d", len(products))
	}
}

func TestGetAllProducts_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetAllProducts(ctx)

	if err == nil {
		t.Error("Expected an error for a cancelled context")
	}
}

func TestGetProduct_ReturnsProduct(t *testing.T) {
	repo := setupTestDB(t)
	seedProduct(t, repo, "p1", "Americano", "americano", 12500, StockStatusInStock)

	product, err := repo.GetProduct(context.Background(), "p1")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if product.Price != 12500 {
		t.Errorf("Expected price 12500, got %d", product.Price)
	}
	if !product.Orderable() {
		t.Error("Expected an IN_STOCK product to be orderable")
	}
	if product.CreatedAt.After(time.Now().Add(time.Minute)) {
		t.Errorf("Unexpected created_at %v", product.CreatedAt)
	}
}

func TestGetProduct_UnknownId(t *testing.T) {
	repo := setupTestDB(t)

	product, err := repo.GetProduct(context.Background(), "missing")

	if product != nil {
		t.Errorf("Expected a nil product for an unknown id, got %+v", *product)
	}
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}
