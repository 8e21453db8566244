package models

import (
	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Category    *Category  `json:"category,omitempty"`
	Variants    []Variant  `json:"variants,omitempty"`
}

// Variant is the sellable/stockable unit of a product. StockQuantity is the
// authoritative inventory count and never goes negative; it is mutated only
// through the inventory ledger.
type Variant struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	SKU           string    `gorm:"uniqueIndex" json:"sku"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
}
