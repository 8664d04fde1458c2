package models

import "time"

// CartItem is a single cart line.
//
// Ownership is a dual-column design: exactly one of UserID/SessionID is
// non-empty. Rows for logged-in users carry UserID, rows for anonymous
// visitors carry the opaque SessionID from the session-id header. A row
// never has both and never has neither.
//
// Price is the unit price captured when the line was first added; it is
// not re-fetched on reads and not recomputed when the quantity of an
// existing line is incremented.
type CartItem struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`

	// Quantity is always >= 1. Adding an already-present
	// (owner, product, variant) line increments it instead of creating
	// a second row.
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Product and Variant carry current display data when the item was
	// read through the listing join. Not persisted on the cart row.
	Product *Product        `json:"product,omitempty"`
	Variant *ProductVariant `json:"variant,omitempty"`
}
