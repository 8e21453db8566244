package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery and payment methods accepted at checkout.
const (
	DeliveryHome   = "home_delivery"
	DeliveryPickup = "store_pickup"

	PaymentCard = "card"
	PaymentCOD  = "cod"
)

// Delivery status lifecycle: pending -> delivered, forward only.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
)

// Payment status lifecycle. Card orders: awaiting_capture -> captured|failed.
// Cash on delivery: pending -> completed.
const (
	PaymentStatusAwaitingCapture = "awaiting_capture"
	PaymentStatusCaptured        = "captured"
	PaymentStatusFailed          = "failed"
	PaymentStatusPending         = "pending"
	PaymentStatusCompleted       = "completed"
)

// Order is the immutable record produced by checkout. Core fields are frozen
// at creation; only the two status columns move, and only forward.
type Order struct {
	BaseModel
	UserID                uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User                  *User       `json:"user,omitempty"`
	OrderNumber           string      `gorm:"uniqueIndex" json:"order_number"`
	PlacedAt              time.Time   `json:"placed_at"`
	TotalAmount           float64     `json:"total_amount"`
	DeliveryMethod        string      `json:"delivery_method"`
	PaymentMethod         string      `json:"payment_method"`
	DeliveryStatus        string      `json:"delivery_status"`
	PaymentStatus         string      `json:"payment_status"`
	AddressID             *uuid.UUID  `gorm:"type:uuid" json:"address_id"`
	Address               *Address    `json:"address,omitempty"`
	EstimatedDeliveryDays int         `json:"estimated_delivery_days"`
	EstimatedDeliveryDate *time.Time  `json:"estimated_delivery_date"`
	Items                 []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots one line at purchase time. Price and name never change
// afterwards, whatever happens to the variant.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	VariantID   uuid.UUID `gorm:"type:uuid;index" json:"variant_id"`
	ProductName string    `json:"product_name"`
	VariantName string    `json:"variant_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	LineTotal   float64   `json:"line_total"`
}
