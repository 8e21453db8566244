package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/metrics"
	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/storeerr"
)

// CheckoutRequest is the presentation layer's checkout payload. The user is
// taken from the authenticated context, never from the body.
type CheckoutRequest struct {
	PaymentMethod  string          `json:"payment_method"`
	DeliveryMethod string          `json:"delivery_method"`
	AddressID      *uuid.UUID      `json:"address_id"`
	AddressDetails *AddressDetails `json:"address_details"`
	CardToken      string          `json:"card_token"`
}

// FulfillmentEngine converts a cart into an immutable order. The whole
// conversion runs in one database transaction: stock reservation, the price
// snapshot, card capture and the cart wipe either all commit or none do.
type FulfillmentEngine struct {
	db       *gorm.DB
	ledger   *InventoryLedger
	resolver *AddressResolver
	gate     PaymentGate
	notifier OrderNotifier
	metrics  *metrics.StoreMetrics
}

// NewFulfillmentEngine constructs FulfillmentEngine. notifier may be nil.
func NewFulfillmentEngine(db *gorm.DB, gate PaymentGate, notifier OrderNotifier, m *metrics.StoreMetrics) *FulfillmentEngine {
	if m == nil {
		m = metrics.New()
	}
	return &FulfillmentEngine{
		db:       db,
		ledger:   NewInventoryLedger(db),
		resolver: NewAddressResolver(db),
		gate:     gate,
		notifier: notifier,
		metrics:  m,
	}
}

// Checkout validates the cart, reserves stock, captures payment for card
// orders and emits the order. Any failure after address resolution rolls the
// entire attempt back; an address created for a failed checkout is retained
// on purpose (it is harmless and the user will want it on retry).
func (e *FulfillmentEngine) Checkout(userID uuid.UUID, req CheckoutRequest) (*models.Order, error) {
	if req.PaymentMethod != models.PaymentCard && req.PaymentMethod != models.PaymentCOD {
		return nil, storeerr.Validation("unknown payment method %q", req.PaymentMethod)
	}
	if req.DeliveryMethod != models.DeliveryHome && req.DeliveryMethod != models.DeliveryPickup {
		return nil, storeerr.Validation("unknown delivery method %q", req.DeliveryMethod)
	}

	var order *models.Order
	err := e.db.Transaction(func(tx *gorm.DB) error {
		placed, txErr := e.checkoutTx(tx, userID, req)
		if txErr != nil {
			return txErr
		}
		order = placed
		return nil
	})
	if err != nil {
		e.recordFailure(err)
		return nil, err
	}

	ctx := context.Background()
	e.metrics.OrdersPlaced.Add(ctx, 1, metrics.WithPaymentMethod(order.PaymentMethod))
	e.metrics.RevenueTotal.Add(ctx, order.TotalAmount, metrics.WithPaymentMethod(order.PaymentMethod))

	if e.notifier != nil {
		go e.dispatchNotification(*order)
	}

	return order, nil
}

func (e *FulfillmentEngine) checkoutTx(tx *gorm.DB, userID uuid.UUID, req CheckoutRequest) (*models.Order, error) {
	var address *models.Address
	if req.DeliveryMethod == models.DeliveryHome {
		resolved, err := e.resolver.WithTx(tx).Resolve(userID, req.AddressID, req.AddressDetails)
		if err != nil {
			return nil, err
		}
		address = resolved
	}

	var cart models.Cart
	if err := tx.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeerr.NotFound("cart")
		}
		return nil, err
	}

	var lines []models.CartLine
	if err := tx.Where("cart_id = ?", cart.ID).Order("created_at asc").Find(&lines).Error; err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, storeerr.Validation("cart is empty")
	}

	ledger := e.ledger.WithTx(tx)
	hasLowStock := false
	totalAmount := 0.0
	items := make([]models.OrderItem, 0, len(lines))

	for _, line := range lines {
		var variant models.Variant
		if err := tx.First(&variant, "id = ?", line.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, storeerr.NotFound("variant")
			}
			return nil, err
		}
		if !variant.IsActive {
			return nil, storeerr.Validation("variant %s is no longer available", variant.SKU)
		}

		// Low stock is judged on the pre-decrement count, same as the
		// estimate the user saw on the checkout page.
		if variant.StockQuantity < LowStockThreshold {
			hasLowStock = true
		}

		if err := ledger.Reserve(variant.ID, line.Quantity); err != nil {
			return nil, err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", variant.ProductID).Error; err != nil {
			return nil, err
		}

		// Snapshot at the variant's current price, not the cart's
		// add-time price.
		lineTotal := variant.Price * float64(line.Quantity)
		totalAmount += lineTotal
		items = append(items, models.OrderItem{
			VariantID:   variant.ID,
			ProductName: product.Name,
			VariantName: variant.Name,
			Quantity:    line.Quantity,
			UnitPrice:   variant.Price,
			LineTotal:   lineTotal,
		})
	}

	estimatedDays, err := e.estimateTx(tx, req.DeliveryMethod, address, hasLowStock)
	if err != nil {
		return nil, err
	}
	estimatedDate := time.Now().UTC().AddDate(0, 0, estimatedDays)

	order := models.Order{
		UserID:                userID,
		OrderNumber:           generateOrderNumber(),
		PlacedAt:              time.Now().UTC(),
		TotalAmount:           totalAmount,
		DeliveryMethod:        req.DeliveryMethod,
		PaymentMethod:         req.PaymentMethod,
		DeliveryStatus:        models.DeliveryStatusPending,
		EstimatedDeliveryDays: estimatedDays,
		EstimatedDeliveryDate: &estimatedDate,
		Items:                 items,
	}
	if address != nil {
		order.AddressID = &address.ID
	}

	switch req.PaymentMethod {
	case models.PaymentCOD:
		order.PaymentStatus = models.PaymentStatusPending
	case models.PaymentCard:
		order.PaymentStatus = models.PaymentStatusAwaitingCapture
	}

	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	if req.PaymentMethod == models.PaymentCard {
		// Capture before finalize: a decline aborts the transaction, so
		// the order and its stock decrements are never visible.
		if err := e.gate.Capture(order.OrderNumber, order.TotalAmount, req.CardToken); err != nil {
			return nil, err
		}
		order.PaymentStatus = models.PaymentStatusCaptured
		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("payment_status", models.PaymentStatusCaptured).Error; err != nil {
			return nil, err
		}
	}

	if err := ClearCart(tx, cart.ID); err != nil {
		return nil, err
	}

	return &order, nil
}

// estimateTx resolves the lead time recorded on the order.
func (e *FulfillmentEngine) estimateTx(tx *gorm.DB, deliveryMethod string, address *models.Address, hasLowStock bool) (int, error) {
	isMain := false
	if deliveryMethod == models.DeliveryHome && address != nil && address.CityID != nil {
		var city models.City
		if err := tx.First(&city, "id = ?", *address.CityID).Error; err == nil {
			isMain = city.IsMainCity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}
	return EstimateDays(deliveryMethod, isMain, hasLowStock), nil
}

func (e *FulfillmentEngine) recordFailure(err error) {
	ctx := context.Background()

	var stock *storeerr.InsufficientStockError
	if errors.As(err, &stock) {
		e.metrics.StockConflicts.Add(ctx, 1)
		e.metrics.CheckoutFailures.Add(ctx, 1, metrics.WithReason("insufficient_stock"))
		return
	}

	reason := "internal"
	var declined *storeerr.PaymentDeclinedError
	switch {
	case storeerr.IsValidation(err):
		reason = "validation"
	case storeerr.IsNotFound(err):
		reason = "not_found"
	case errors.As(err, &declined):
		reason = "payment_declined"
	}
	e.metrics.CheckoutFailures.Add(ctx, 1, metrics.WithReason(reason))
}

func (e *FulfillmentEngine) dispatchNotification(order models.Order) {
	items := make([]OrderItemNotification, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemNotification{
			Name:     fmt.Sprintf("%s (%s)", item.ProductName, item.VariantName),
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		})
	}

	notification := OrderNotification{
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Items:         items,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
	}

	if err := e.notifier.NotifyOrderPlaced(notification); err != nil {
		log.Printf("[Checkout] order notification failed for %s: %v", order.OrderNumber, err)
	}
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
