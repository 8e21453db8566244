package models

import (
	"github.com/google/uuid"
)

// Favorite marks a product as saved by a user. The composite unique index
// makes repeated adds idempotent at the storage layer.
type Favorite struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorites_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorites_user_product" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}
