package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_storefront/internal/catalog"
)

type ProductsHandler struct {
	repo    catalog.RepoInterface
	cache   catalog.ProductCache
	timeout time.Duration
}

func NewProductsHandler(repo catalog.RepoInterface, cache catalog.ProductCache, timeout time.Duration) *ProductsHandler {
	return &ProductsHandler{
		repo:    repo,
		cache:   cache,
		timeout: timeout,
	}
}

// GET /api/v1/products
func (h *ProductsHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.repo.GetAllProducts(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load products")
		return
	}
	if products == nil {
		products = make([]*catalog.Product, 0)
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
//
// Browse traffic reads through the cache; checkout price verification never
// does.
func (h *ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, productID); err == nil {
			respondJSON(w, http.StatusOK, cached)
			return
		} else if !errors.Is(err, catalog.ErrCacheMiss) {
			log.Printf("product cache read failed for %s: %v", productID, err)
		}
	}

	product, err := h.repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, product); err != nil {
			log.Printf("product cache write failed for %s: %v", productID, err)
		}
	}

	respondJSON(w, http.StatusOK, product)
}
