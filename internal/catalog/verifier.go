package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

// ErrProductUnavailable covers both unknown ids and products that are not
// in an orderable state.
var ErrProductUnavailable = errors.New("product unavailable")

// Verifier re-derives unit prices and stock state from the catalog store.
// Client-submitted prices are never consulted; this is the tamper guard in
// front of every charge attempt. Read-only, runs on every attempt.
type Verifier struct {
	repo RepoInterface
}

func NewVerifier(repo RepoInterface) *Verifier {
	return &Verifier{repo: repo}
}

// Verify resolves every cart line against the catalog and returns the
// verified items plus the server-computed total in minor units.
func (v *Verifier) Verify(ctx context.Context, lines []domain.CartLine) ([]domain.VerifiedItem, int64, error) {
	if len(lines) == 0 {
		return nil, 0, errors.New("cart is empty, nothing to checkout")
	}

	items := make([]domain.VerifiedItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: product %s has non-positive quantity", ErrProductUnavailable, line.ProductID)
		}

		product, err := v.repo.GetProduct(ctx, line.ProductID)
		if errors.Is(err, ErrProductNotFound) {
			return nil, 0, fmt.Errorf("%w: product %s not found", ErrProductUnavailable, line.ProductID)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to verify product %s: %w", line.ProductID, err)
		}
		if !product.Orderable() {
			return nil, 0, fmt.Errorf("%w: product %s is %s", ErrProductUnavailable, line.ProductID, product.Stock)
		}

		item := domain.VerifiedItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductSlug: product.Slug,
			ImageURL:    product.ImageURL,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		}
		items = append(items, item)
		total += item.Subtotal()
	}

	return items, total, nil
}
