package services

import (
	"strings"

	"github.com/example/meridian/internal/storeerr"
)

// PaymentGate is the pluggable capture step of a card checkout. Capture runs
// inside the checkout transaction; returning an error rolls the whole order
// back, so a declined card never produces a visible order.
type PaymentGate interface {
	Capture(orderNumber string, amount float64, cardToken string) error
}

// MockCardGate stands in for a real acquirer. Tokens are opaque; an empty
// token or one prefixed "declined" fails the capture.
type MockCardGate struct{}

// NewMockCardGate constructs MockCardGate.
func NewMockCardGate() *MockCardGate {
	return &MockCardGate{}
}

// Capture implements PaymentGate.
func (g *MockCardGate) Capture(orderNumber string, amount float64, cardToken string) error {
	if strings.TrimSpace(cardToken) == "" {
		return &storeerr.PaymentDeclinedError{Reason: "missing card token"}
	}
	if strings.HasPrefix(cardToken, "declined") {
		return &storeerr.PaymentDeclinedError{Reason: "card declined by issuer"}
	}
	if amount <= 0 {
		return &storeerr.PaymentDeclinedError{Reason: "non-positive amount"}
	}
	return nil
}
