package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/storeerr"
)

// FavoritesService manages the (user, product) favorite pairs. Both add and
// remove are idempotent; the unique composite index backs the add path so a
// racing duplicate insert degrades to a no-op instead of a second row.
type FavoritesService struct {
	db *gorm.DB
}

// NewFavoritesService constructs FavoritesService.
func NewFavoritesService(db *gorm.DB) *FavoritesService {
	return &FavoritesService{db: db}
}

// Add saves a product for the user. Adding an existing favorite is a no-op.
func (s *FavoritesService) Add(userID, productID uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storeerr.NotFound("product")
		}
		return err
	}

	var existing models.Favorite
	err := s.db.First(&existing, "user_id = ? AND product_id = ?", userID, productID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	favorite := models.Favorite{UserID: userID, ProductID: productID}
	if err := s.db.Create(&favorite).Error; err != nil {
		// Lost a race against another add of the same pair; the unique
		// index already holds the single row we wanted.
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// Remove deletes the pair if present; removing an absent favorite is a no-op.
func (s *FavoritesService) Remove(userID, productID uuid.UUID) error {
	return s.db.Delete(&models.Favorite{}, "user_id = ? AND product_id = ?", userID, productID).Error
}

// List returns the user's favorites with products preloaded, newest first.
func (s *FavoritesService) List(userID uuid.UUID) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := s.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
