package models

import "time"

// Product is a sellable catalog entry.
type Product struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id,omitempty"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	SalePrice *float64  `json:"sale_price,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EffectivePrice returns the sale price when one is set, otherwise the
// list price.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// ProductVariant is a purchasable variation of a product (size, color, ...).
type ProductVariant struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
}
