package models

import (
	"github.com/google/uuid"
)

// Cart is a user's mutable pre-order basket. One cart per user, created
// lazily and emptied (never deleted) on checkout. The stored total is a
// convenience column; summaries always recompute from the lines.
type Cart struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	TotalAmount float64    `json:"total_amount"`
	Lines       []CartLine `json:"lines,omitempty"`
}

// CartLine holds one variant plus quantity. UnitPrice is the price seen at
// add time; checkout re-prices from the current variant.
type CartLine struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	VariantID uuid.UUID `gorm:"type:uuid;index" json:"variant_id"`
	Variant   *Variant  `json:"variant,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}
