package catalog

import "time"

type StockStatus string

const (
	StockStatusInStock      StockStatus = "IN_STOCK"
	StockStatusOutOfStock   StockStatus = "OUT_OF_STOCK"
	StockStatusDiscontinued StockStatus = "DISCONTINUED"
)

// Product is a catalog record. Price is in minor units.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	ImageURL    string      `json:"image_url"`
	Stock       StockStatus `json:"stock"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Orderable reports whether the product can be placed in an order.
func (p *Product) Orderable() bool {
	return p.Stock == StockStatusInStock
}
