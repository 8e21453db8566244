package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/middleware"
	"github.com/example/meridian/internal/services"
)

// FavoritesHandler manages saved products.
type FavoritesHandler struct {
	favorites *services.FavoritesService
}

// NewFavoritesHandler constructs FavoritesHandler.
func NewFavoritesHandler(db *gorm.DB) *FavoritesHandler {
	return &FavoritesHandler{favorites: services.NewFavoritesService(db)}
}

// ListFavorites returns the user's saved products.
func (h *FavoritesHandler) ListFavorites(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	favorites, err := h.favorites.List(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": favorites})
}

// AddFavorite saves a product. Repeating the call is a no-op.
func (h *FavoritesHandler) AddFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	if err := h.favorites.Add(userID, productID); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "product saved"})
}

// RemoveFavorite forgets a product. Removing an absent favorite is a no-op.
func (h *FavoritesHandler) RemoveFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productID"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	if err := h.favorites.Remove(userID, productID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product removed"})
}
