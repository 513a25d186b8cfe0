package catalog

import (
	"context"
	"errors"
)

// ProductCache fronts the catalog store for browse traffic. Checkout
// verification never reads through it; prices for money movement always
// come straight from the store.
type ProductCache interface {
	Get(ctx context.Context, productID string) (*Product, error)
	Set(ctx context.Context, product *Product) error
	Delete(ctx context.Context, productID string) error
}

var ErrCacheMiss = errors.New("cache miss")
