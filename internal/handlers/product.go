package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/services"
	"github.com/example/meridian/internal/utils"
)

// ProductHandler manages products and their variants.
type ProductHandler struct {
	db     *gorm.DB
	ledger *services.InventoryLedger
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db, ledger: services.NewInventoryLedger(db)}
}

// ListProducts returns paginated products with variants.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if categoryID := c.Query("category_id"); categoryID != "" {
		if id, err := uuid.Parse(categoryID); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Variants").Preload("Category").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct returns a single product with its variants.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Variants").Preload("Category").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type variantRequest struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	IsActive      *bool   `json:"is_active"`
}

type productRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  string           `json:"category_id"`
	Variants    []variantRequest `json:"variants"`
}

// CreateProduct persists a product and its variants.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
		}
		product.CategoryID = &id
	}

	for _, v := range req.Variants {
		if v.StockQuantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "stock quantity cannot be negative")
		}
		active := true
		if v.IsActive != nil {
			active = *v.IsActive
		}
		product.Variants = append(product.Variants, models.Variant{
			SKU:           v.SKU,
			Name:          v.Name,
			Price:         v.Price,
			StockQuantity: v.StockQuantity,
			IsActive:      active,
		})
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates name, description and category.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
		}
		updates["category_id"] = categoryID
	}

	if len(updates) > 0 {
		if err := h.db.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product whose variants no order references.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var referenced int64
	if err := h.db.Model(&models.OrderItem{}).
		Joins("JOIN variants ON variants.id = order_items.variant_id").
		Where("variants.product_id = ?", id).
		Count(&referenced).Error; err != nil {
		return err
	}
	if referenced > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "product has variants referenced by orders")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Variant{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}

// CreateVariant adds a variant to an existing product.
func (h *ProductHandler) CreateVariant(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req variantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.StockQuantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock quantity cannot be negative")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	variant := models.Variant{
		ProductID:     productID,
		SKU:           req.SKU,
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      active,
	}

	if err := h.db.Create(&variant).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": variant})
}

type stockUpdateRequest struct {
	StockQuantity int `json:"stock_quantity"`
}

// UpdateVariantStock applies an admin stock edit through the ledger.
func (h *ProductHandler) UpdateVariantStock(c *fiber.Ctx) error {
	variantID, err := uuid.Parse(c.Params("variantID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req stockUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.ledger.SetStock(variantID, req.StockQuantity); err != nil {
		return err
	}

	var variant models.Variant
	if err := h.db.First(&variant, "id = ?", variantID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": variant})
}

// DeleteVariant removes a variant no order item references. Variants that
// appear on an order stay forever; the order's snapshot must keep resolving.
func (h *ProductHandler) DeleteVariant(c *fiber.Ctx) error {
	variantID, err := uuid.Parse(c.Params("variantID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var referenced int64
	if err := h.db.Model(&models.OrderItem{}).
		Where("variant_id = ?", variantID).
		Count(&referenced).Error; err != nil {
		return err
	}
	if referenced > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "variant is referenced by existing orders")
	}

	if err := h.db.Delete(&models.Variant{}, "id = ?", variantID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "variant deleted"})
}

// RegisterProductRoutes wires the public product endpoints.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
}

// RegisterAdminProductRoutes wires the admin product endpoints.
func (h *ProductHandler) RegisterAdminProductRoutes(router fiber.Router) {
	router.Post("/", h.CreateProduct)
	router.Put("/:id", h.UpdateProduct)
	router.Delete("/:id", h.DeleteProduct)
	router.Post("/:id/variants", h.CreateVariant)
	router.Put("/variants/:variantID/stock", h.UpdateVariantStock)
	router.Delete("/variants/:variantID", h.DeleteVariant)
}
