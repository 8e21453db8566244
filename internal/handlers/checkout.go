package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/middleware"
	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/services"
)

// CheckoutHandler exposes the fulfillment engine and delivery estimator.
type CheckoutHandler struct {
	engine    *services.FulfillmentEngine
	estimator *services.DeliveryEstimator
	carts     *services.CartService
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(db *gorm.DB, engine *services.FulfillmentEngine) *CheckoutHandler {
	return &CheckoutHandler{
		engine:    engine,
		estimator: services.NewDeliveryEstimator(db),
		carts:     services.NewCartService(db),
	}
}

type checkoutRequest struct {
	PaymentMethod  string                   `json:"payment_method"`
	DeliveryMethod string                   `json:"delivery_method"`
	AddressID      string                   `json:"address_id"`
	AddressDetails *services.AddressDetails `json:"address_details"`
	CardToken      string                   `json:"card_token"`
}

// Checkout converts the user's cart into an order.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	engineReq := services.CheckoutRequest{
		PaymentMethod:  req.PaymentMethod,
		DeliveryMethod: req.DeliveryMethod,
		AddressDetails: req.AddressDetails,
		CardToken:      req.CardToken,
	}
	if req.AddressID != "" {
		id, err := uuid.Parse(req.AddressID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid address id")
		}
		engineReq.AddressID = &id
	}

	order, err := h.engine.Checkout(userID, engineReq)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":                      order.ID,
			"order_number":            order.OrderNumber,
			"placed_at":               order.PlacedAt,
			"total_amount":            order.TotalAmount,
			"delivery_status":         order.DeliveryStatus,
			"payment_status":          order.PaymentStatus,
			"estimated_delivery_days": order.EstimatedDeliveryDays,
			"estimated_delivery_date": order.EstimatedDeliveryDate,
			"items":                   order.Items,
		},
	})
}

// DeliveryEstimate returns the expected lead time for the user's cart. With
// home delivery and no city chosen it returns both city tiers instead of
// guessing a default. Safe to call repeatedly; nothing is mutated.
func (h *CheckoutHandler) DeliveryEstimate(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	deliveryMethod := c.Query("delivery_method", models.DeliveryHome)
	if deliveryMethod != models.DeliveryHome && deliveryMethod != models.DeliveryPickup {
		return fiber.NewError(fiber.StatusBadRequest, "unknown delivery method")
	}

	variants, err := h.carts.Variants(userID)
	if err != nil {
		return err
	}

	city := c.Query("city")
	if deliveryMethod == models.DeliveryHome && city == "" {
		estimate := h.estimator.WithoutCity(variants)
		return c.JSON(fiber.Map{"success": true, "data": estimate})
	}

	estimate, err := h.estimator.ForCity(deliveryMethod, city, variants)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": estimate})
}
