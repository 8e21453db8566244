package models

import (
	"github.com/google/uuid"
)

// Address is a delivery destination owned by one user. Once referenced by an
// order it is treated as immutable; orders keep pointing at it even if the
// user later adds new addresses.
type Address struct {
	BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	HouseNumber string     `json:"house_number"`
	Street      string     `json:"street"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	CityID      *uuid.UUID `gorm:"type:uuid" json:"city_id"`
}
