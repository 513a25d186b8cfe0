package domain

// CartLine is the client-submitted shape. ClientPrice is kept only for
// logging; the verifier always re-derives the price from the catalog.
type CartLine struct {
	ProductID   string `json:"product_id"`
	Quantity    int32  `json:"quantity"`
	ClientPrice int64  `json:"price,omitempty"`
}

// VerifiedItem is a cart line with the authoritative unit price and a
// product snapshot, produced by the verifier. Immutable once created.
type VerifiedItem struct {
	ProductID   string
	ProductName string
	ProductSlug string
	ImageURL    string
	Quantity    int32
	UnitPrice   int64 // minor units
}

func (v VerifiedItem) Subtotal() int64 {
	return v.UnitPrice * int64(v.Quantity)
}
