package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/storeerr"
)

// CartSummary is the checkout-facing view of a cart: its lines plus a total
// recomputed from them on every call.
type CartSummary struct {
	CartID      uuid.UUID         `json:"cart_id"`
	Lines       []models.CartLine `json:"lines"`
	TotalAmount float64           `json:"total_amount"`
}

// CartService manages a user's basket. The cart never reserves stock; that
// happens only when the fulfillment engine converts it into an order.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs CartService.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// getOrCreate returns the user's cart, creating it on first use.
func (s *CartService) getOrCreate(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.First(&cart, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := s.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddLine puts a variant into the cart. A second add of the same variant
// merges into the existing line instead of duplicating it.
func (s *CartService) AddLine(userID, variantID uuid.UUID, quantity int) (*models.CartLine, error) {
	if quantity < 1 {
		return nil, storeerr.Validation("quantity must be at least 1")
	}

	var variant models.Variant
	if err := s.db.First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeerr.NotFound("variant")
		}
		return nil, err
	}
	if !variant.IsActive {
		return nil, storeerr.Validation("variant %s is not available", variant.SKU)
	}

	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var line models.CartLine
	err = s.db.First(&line, "cart_id = ? AND variant_id = ?", cart.ID, variantID).Error
	switch {
	case err == nil:
		line.Quantity += quantity
		line.UnitPrice = variant.Price
		if err := s.db.Save(&line).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.CartLine{
			CartID:    cart.ID,
			VariantID: variantID,
			Quantity:  quantity,
			UnitPrice: variant.Price,
		}
		if err := s.db.Create(&line).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.syncTotal(cart.ID); err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateLine sets a line's quantity. A quantity of zero or less removes the
// line; that is the documented rule, not an error.
func (s *CartService) UpdateLine(userID, lineID uuid.UUID, quantity int) error {
	line, err := s.ownedLine(userID, lineID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		if err := s.db.Delete(&models.CartLine{}, "id = ?", line.ID).Error; err != nil {
			return err
		}
		return s.syncTotal(line.CartID)
	}

	if err := s.db.Model(&models.CartLine{}).
		Where("id = ?", line.ID).
		Update("quantity", quantity).Error; err != nil {
		return err
	}
	return s.syncTotal(line.CartID)
}

// RemoveLine deletes a line from the user's cart.
func (s *CartService) RemoveLine(userID, lineID uuid.UUID) error {
	line, err := s.ownedLine(userID, lineID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.CartLine{}, "id = ?", line.ID).Error; err != nil {
		return err
	}
	return s.syncTotal(line.CartID)
}

// Clear removes every line. The cart row itself survives for reuse.
func (s *CartService) Clear(userID uuid.UUID) error {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return err
	}
	return ClearCart(s.db, cart.ID)
}

// ClearCart empties a cart inside an arbitrary gorm handle so the
// fulfillment engine can call it within its transaction.
func ClearCart(tx *gorm.DB, cartID uuid.UUID) error {
	if err := tx.Delete(&models.CartLine{}, "cart_id = ?", cartID).Error; err != nil {
		return err
	}
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_amount", 0).Error
}

// GetSummary returns the cart's lines with variants preloaded and a total
// computed from the lines right now. A cached total is never trusted.
func (s *CartService) GetSummary(userID uuid.UUID) (*CartSummary, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var lines []models.CartLine
	if err := s.db.Preload("Variant").
		Where("cart_id = ?", cart.ID).
		Order("created_at asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}

	var total float64
	for _, line := range lines {
		total += line.UnitPrice * float64(line.Quantity)
	}

	return &CartSummary{CartID: cart.ID, Lines: lines, TotalAmount: total}, nil
}

// Variants returns the current variant rows behind the cart's lines, for the
// delivery estimator's low-stock check.
func (s *CartService) Variants(userID uuid.UUID) ([]models.Variant, error) {
	summary, err := s.GetSummary(userID)
	if err != nil {
		return nil, err
	}

	variants := make([]models.Variant, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		if line.Variant != nil {
			variants = append(variants, *line.Variant)
		}
	}
	return variants, nil
}

func (s *CartService) ownedLine(userID, lineID uuid.UUID) (*models.CartLine, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	var line models.CartLine
	if err := s.db.First(&line, "id = ? AND cart_id = ?", lineID, cart.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeerr.NotFound("cart line")
		}
		return nil, err
	}
	return &line, nil
}

// syncTotal refreshes the stored convenience total from the lines.
func (s *CartService) syncTotal(cartID uuid.UUID) error {
	var lines []models.CartLine
	if err := s.db.Where("cart_id = ?", cartID).Find(&lines).Error; err != nil {
		return err
	}

	var total float64
	for _, line := range lines {
		total += line.UnitPrice * float64(line.Quantity)
	}

	return s.db.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_amount", total).Error
}
