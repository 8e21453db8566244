package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/storeerr"
)

// AddressDetails carries raw address fields supplied at checkout when no
// saved address is reused.
type AddressDetails struct {
	HouseNumber string `json:"house_number"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
}

// AddressResolver looks up or creates shipping addresses for a user.
type AddressResolver struct {
	db *gorm.DB
}

// NewAddressResolver constructs AddressResolver.
func NewAddressResolver(db *gorm.DB) *AddressResolver {
	return &AddressResolver{db: db}
}

// WithTx returns a resolver bound to the given transaction.
func (r *AddressResolver) WithTx(tx *gorm.DB) *AddressResolver {
	return &AddressResolver{db: tx}
}

// Resolve returns an existing owned address or creates one from details.
// Exactly one of addressID / details must be usable.
func (r *AddressResolver) Resolve(userID uuid.UUID, addressID *uuid.UUID, details *AddressDetails) (*models.Address, error) {
	if addressID != nil {
		return r.lookupOwned(userID, *addressID)
	}
	if details != nil {
		return r.createFromDetails(userID, details)
	}
	return nil, storeerr.Validation("address is required for home delivery")
}

func (r *AddressResolver) lookupOwned(userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, "id = ?", addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeerr.NotFound("address")
		}
		return nil, err
	}

	if address.UserID != userID {
		return nil, storeerr.NotAuthorized("address does not belong to the current user")
	}

	return &address, nil
}

func (r *AddressResolver) createFromDetails(userID uuid.UUID, details *AddressDetails) (*models.Address, error) {
	missing := []string{}
	if strings.TrimSpace(details.HouseNumber) == "" {
		missing = append(missing, "house_number")
	}
	if strings.TrimSpace(details.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(details.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(details.State) == "" {
		missing = append(missing, "state")
	}
	if len(missing) > 0 {
		return nil, storeerr.Validation("missing address fields: %s", strings.Join(missing, ", "))
	}

	var city models.City
	if err := r.db.First(&city, "name = ?", details.City).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeerr.Validation("city %q is not served", details.City)
		}
		return nil, err
	}

	address := models.Address{
		UserID:      userID,
		HouseNumber: details.HouseNumber,
		Street:      details.Street,
		City:        details.City,
		State:       details.State,
		CityID:      &city.ID,
	}
	if err := r.db.Create(&address).Error; err != nil {
		return nil, err
	}

	return &address, nil
}
