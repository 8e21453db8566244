package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/storeerr"
)

// Lead-time tiers in days. Home delivery depends on the destination city;
// store pickup does not. Low stock anywhere in the cart adds the penalty to
// either method.
const (
	LeadTimeMainCity  = 5
	LeadTimeOtherCity = 7
	LeadTimePickup    = 2
	LowStockPenalty   = 3
)

// DeliveryEstimate is the resolved single-city answer.
type DeliveryEstimate struct {
	EstimatedDays int  `json:"estimated_days"`
	HasLowStock   bool `json:"has_low_stock"`
	IsMainCity    bool `json:"is_main_city"`
}

// DeliveryEstimateRange is returned for home delivery before a city has been
// chosen: both tiers, so the UI does not have to guess a default.
type DeliveryEstimateRange struct {
	MainCityEstimate  int  `json:"main_city_estimate"`
	OtherCityEstimate int  `json:"other_city_estimate"`
	HasLowStock       bool `json:"has_low_stock"`
}

// DeliveryEstimator computes expected lead times. All methods are read-only
// and safe to call repeatedly while the user edits city or method.
type DeliveryEstimator struct {
	db *gorm.DB
}

// NewDeliveryEstimator constructs DeliveryEstimator.
func NewDeliveryEstimator(db *gorm.DB) *DeliveryEstimator {
	return &DeliveryEstimator{db: db}
}

// EstimateDays resolves a single lead time from method, city tier and the
// cart's stock state. Pure computation, exported for checkout reuse.
func EstimateDays(deliveryMethod string, isMainCity, hasLowStock bool) int {
	days := LeadTimePickup
	if deliveryMethod == models.DeliveryHome {
		days = LeadTimeOtherCity
		if isMainCity {
			days = LeadTimeMainCity
		}
	}
	if hasLowStock {
		days += LowStockPenalty
	}
	return days
}

// HasLowStock reports whether any of the given variants sits below the
// low-stock threshold.
func HasLowStock(variants []models.Variant) bool {
	for _, v := range variants {
		if v.StockQuantity < LowStockThreshold {
			return true
		}
	}
	return false
}

// ForCity estimates delivery for a known destination city.
func (e *DeliveryEstimator) ForCity(deliveryMethod, cityName string, variants []models.Variant) (*DeliveryEstimate, error) {
	isMain := false
	if deliveryMethod == models.DeliveryHome {
		city, err := e.lookupCity(cityName)
		if err != nil {
			return nil, err
		}
		isMain = city.IsMainCity
	}

	low := HasLowStock(variants)
	return &DeliveryEstimate{
		EstimatedDays: EstimateDays(deliveryMethod, isMain, low),
		HasLowStock:   low,
		IsMainCity:    isMain,
	}, nil
}

// WithoutCity estimates both home-delivery tiers for a cart whose destination
// is not yet known.
func (e *DeliveryEstimator) WithoutCity(variants []models.Variant) *DeliveryEstimateRange {
	low := HasLowStock(variants)
	return &DeliveryEstimateRange{
		MainCityEstimate:  EstimateDays(models.DeliveryHome, true, low),
		OtherCityEstimate: EstimateDays(models.DeliveryHome, false, low),
		HasLowStock:       low,
	}
}

func (e *DeliveryEstimator) lookupCity(name string) (*models.City, error) {
	var city models.City
	if err := e.db.First(&city, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeerr.Validation("city %q is not served", name)
		}
		return nil, err
	}
	return &city, nil
}
