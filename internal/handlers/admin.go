package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/middleware"
	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/services"
	"github.com/example/meridian/internal/storeerr"
	"github.com/example/meridian/internal/utils"
)

// AdminHandler manages admin-only endpoints: order oversight, status
// transitions and dashboard reporting.
type AdminHandler struct {
	db      *gorm.DB
	machine *services.OrderStatusMachine
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db, machine: services.NewOrderStatusMachine(db)}
}

// ListOrders returns all orders, newest first, optionally filtered by status.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("delivery_status"); status != "" {
		query = query.Where("delivery_status = ?", status)
	}
	if status := c.Query("payment_status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateDeliveryStatus moves an order's delivery status forward.
func (h *AdminHandler) UpdateDeliveryStatus(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentAdmin(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Status != models.DeliveryStatusDelivered {
		return storeerr.Validation("unsupported delivery status %q", req.Status)
	}

	order, err := h.machine.MarkDelivered(admin, orderID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// UpdatePaymentStatus completes a cash-on-delivery payment.
func (h *AdminHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	admin, ok := middleware.GetCurrentAdmin(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Status != models.PaymentStatusCompleted {
		return storeerr.Validation("unsupported payment status %q", req.Status)
	}

	order, err := h.machine.MarkPaid(admin, orderID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var deliveryCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("delivery_status as status, count(*) as count").
		Group("delivery_status").
		Scan(&deliveryCounts).Error; err != nil {
		return err
	}

	ordersByDeliveryStatus := make(map[string]int64)
	for _, sc := range deliveryCounts {
		ordersByDeliveryStatus[sc.Status] = sc.Count
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var todayRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("placed_at >= CURRENT_DATE").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	var lowStockVariants int64
	if err := h.db.Model(&models.Variant{}).
		Where("stock_quantity < ?", services.LowStockThreshold).
		Count(&lowStockVariants).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":               totalUsers,
			"total_orders":              totalOrders,
			"orders_by_delivery_status": ordersByDeliveryStatus,
			"total_revenue":             totalRevenue,
			"today_revenue":             todayRevenue,
			"low_stock_variants":        lowStockVariants,
		},
	})
}
