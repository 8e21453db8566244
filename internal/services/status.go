package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/storeerr"
)

// OrderStatusMachine applies the post-creation admin transitions. Both
// status fields only ever move forward; there is no way back.
type OrderStatusMachine struct {
	db *gorm.DB
}

// NewOrderStatusMachine constructs OrderStatusMachine.
func NewOrderStatusMachine(db *gorm.DB) *OrderStatusMachine {
	return &OrderStatusMachine{db: db}
}

// MarkDelivered moves delivery_status from pending to delivered. Delivered
// is terminal: repeating the transition is rejected, never double-applied.
func (m *OrderStatusMachine) MarkDelivered(actor *models.User, orderID uuid.UUID) (*models.Order, error) {
	if actor == nil || !actor.IsAdminTier() {
		return nil, storeerr.NotAuthorized("only admins may change delivery status")
	}

	return m.transition(orderID, func(order *models.Order) error {
		if order.DeliveryStatus != models.DeliveryStatusPending {
			return &storeerr.IllegalTransitionError{
				Field: "delivery_status",
				From:  order.DeliveryStatus,
				To:    models.DeliveryStatusDelivered,
			}
		}
		order.DeliveryStatus = models.DeliveryStatusDelivered
		return nil
	})
}

// MarkPaid completes a cash-on-delivery payment once the courier collects.
// Card orders are captured at checkout and may not be touched through this
// path.
func (m *OrderStatusMachine) MarkPaid(actor *models.User, orderID uuid.UUID) (*models.Order, error) {
	if actor == nil || !actor.IsAdminTier() {
		return nil, storeerr.NotAuthorized("only admins may change payment status")
	}

	return m.transition(orderID, func(order *models.Order) error {
		if order.PaymentMethod != models.PaymentCOD {
			return &storeerr.IllegalTransitionError{
				Field: "payment_status",
				From:  order.PaymentStatus,
				To:    models.PaymentStatusCompleted,
			}
		}
		if order.PaymentStatus != models.PaymentStatusPending {
			return &storeerr.IllegalTransitionError{
				Field: "payment_status",
				From:  order.PaymentStatus,
				To:    models.PaymentStatusCompleted,
			}
		}
		order.PaymentStatus = models.PaymentStatusCompleted
		return nil
	})
}

// transition loads the order, applies the mutation and persists only the
// status columns, all inside one transaction so concurrent admin clicks
// cannot interleave.
func (m *OrderStatusMachine) transition(orderID uuid.UUID, apply func(*models.Order) error) (*models.Order, error) {
	var order models.Order
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storeerr.NotFound("order")
			}
			return err
		}

		if err := apply(&order); err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"delivery_status": order.DeliveryStatus,
				"payment_status":  order.PaymentStatus,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
