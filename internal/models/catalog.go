package models

// Category groups products for browsing.
type Category struct {
	BaseModel
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Products    []Product `json:"products,omitempty"`
}

// City is reference data for delivery destinations. IsMainCity selects the
// faster home-delivery tier.
type City struct {
	BaseModel
	Name       string `gorm:"uniqueIndex" json:"name"`
	ZipCode    string `json:"zip_code"`
	IsMainCity bool   `json:"is_main_city"`
}
