package services_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/services"
	"github.com/example/meridian/internal/storeerr"
)

func newEngine(db *gorm.DB) *services.FulfillmentEngine {
	return services.NewFulfillmentEngine(db, services.NewMockCardGate(), nil, nil)
}

func codHomeRequest(address *models.Address) services.CheckoutRequest {
	return services.CheckoutRequest{
		PaymentMethod:  models.PaymentCOD,
		DeliveryMethod: models.DeliveryHome,
		AddressID:      &address.ID,
	}
}

func TestCheckoutCODPlacesOrderAndClearsCart(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co1@example.com", models.RoleCustomer)
	city := createCity(t, db, "Colombo", true)
	address := createAddress(t, db, user, city)
	variant := createVariant(t, db, "CO-1", 20.0, 30)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, variant.ID, 2)
	require.NoError(t, err)

	order, err := newEngine(db).Checkout(user.ID, codHomeRequest(address))
	require.NoError(t, err)

	assert.Equal(t, 40.0, order.TotalAmount)
	assert.Equal(t, models.DeliveryStatusPending, order.DeliveryStatus)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 20.0, order.Items[0].UnitPrice)

	// Healthy stock, main city: 5 days.
	assert.Equal(t, 5, order.EstimatedDeliveryDays)

	assert.Equal(t, 28, variantStock(t, db, variant.ID))

	summary, err := carts.GetSummary(user.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)

	var cartCount int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)
}

func TestCheckoutSnapshotsCurrentPriceNotCartPrice(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co2@example.com", models.RoleCustomer)
	city := createCity(t, db, "Colombo", true)
	address := createAddress(t, db, user, city)
	variant := createVariant(t, db, "CO-2", 10.0, 30)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, variant.ID, 3)
	require.NoError(t, err)

	// Price changes after the line was added; checkout must re-price.
	require.NoError(t, db.Model(&models.Variant{}).
		Where("id = ?", variant.ID).
		Update("price", 12.0).Error)

	order, err := newEngine(db).Checkout(user.ID, codHomeRequest(address))
	require.NoError(t, err)
	assert.Equal(t, 36.0, order.TotalAmount)
	assert.Equal(t, 12.0, order.Items[0].UnitPrice)
}

func TestOrderTotalIsFrozenAfterPlacement(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co3@example.com", models.RoleCustomer)
	city := createCity(t, db, "Colombo", true)
	address := createAddress(t, db, user, city)
	variant := createVariant(t, db, "CO-3", 15.0, 30)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, variant.ID, 2)
	require.NoError(t, err)

	order, err := newEngine(db).Checkout(user.ID, codHomeRequest(address))
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Variant{}).
		Where("id = ?", variant.ID).
		Update("price", 99.0).Error)

	var reloaded models.Order
	require.NoError(t, db.Preload("Items").First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, 30.0, reloaded.TotalAmount)
	assert.Equal(t, 15.0, reloaded.Items[0].UnitPrice)
}

func TestCheckoutAllOrNothingOnInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co4@example.com", models.RoleCustomer)
	city := createCity(t, db, "Colombo", true)
	address := createAddress(t, db, user, city)
	plenty := createVariant(t, db, "CO-4A", 10.0, 50)
	scarce := createVariant(t, db, "CO-4B", 10.0, 1)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, plenty.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddLine(user.ID, scarce.ID, 3)
	require.NoError(t, err)

	_, err = newEngine(db).Checkout(user.ID, codHomeRequest(address))

	var stockErr *storeerr.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Variant CO-4B", stockErr.VariantName)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	// Rollback undid the first line's decrement too.
	assert.Equal(t, 50, variantStock(t, db, plenty.ID))
	assert.Equal(t, 1, variantStock(t, db, scarce.ID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	// The cart survives a failed checkout.
	summary, err := carts.GetSummary(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 2)
}

func TestCheckoutCardDeclinedLeavesNoTrace(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co5@example.com", models.RoleCustomer)
	variant := createVariant(t, db, "CO-5", 10.0, 30)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, variant.ID, 2)
	require.NoError(t, err)

	_, err = newEngine(db).Checkout(user.ID, services.CheckoutRequest{
		PaymentMethod:  models.PaymentCard,
		DeliveryMethod: models.DeliveryPickup,
		CardToken:      "declined-4242",
	})

	var declined *storeerr.PaymentDeclinedError
	require.True(t, errors.As(err, &declined))

	assert.Equal(t, 30, variantStock(t, db, variant.ID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	summary, err := carts.GetSummary(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 1)
}

func TestCheckoutCardCapturedOnSuccess(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co6@example.com", models.RoleCustomer)
	variant := createVariant(t, db, "CO-6", 10.0, 30)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, variant.ID, 1)
	require.NoError(t, err)

	order, err := newEngine(db).Checkout(user.ID, services.CheckoutRequest{
		PaymentMethod:  models.PaymentCard,
		DeliveryMethod: models.DeliveryPickup,
		CardToken:      "tok-visa",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCaptured, order.PaymentStatus)

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, models.PaymentStatusCaptured, reloaded.PaymentStatus)

	// Pickup with healthy stock: 2 days.
	assert.Equal(t, 2, order.EstimatedDeliveryDays)
}

func TestCheckoutValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co7@example.com", models.RoleCustomer)
	variant := createVariant(t, db, "CO-7", 10.0, 30)
	carts := services.NewCartService(db)
	engine := newEngine(db)

	// Empty cart.
	_, err := engine.Checkout(user.ID, services.CheckoutRequest{
		PaymentMethod:  models.PaymentCOD,
		DeliveryMethod: models.DeliveryPickup,
	})
	assert.Error(t, err)

	_, err = carts.AddLine(user.ID, variant.ID, 1)
	require.NoError(t, err)

	// Home delivery without any address.
	_, err = engine.Checkout(user.ID, services.CheckoutRequest{
		PaymentMethod:  models.PaymentCOD,
		DeliveryMethod: models.DeliveryHome,
	})
	assert.True(t, storeerr.IsValidation(err))

	// Unknown methods.
	_, err = engine.Checkout(user.ID, services.CheckoutRequest{
		PaymentMethod:  "cheque",
		DeliveryMethod: models.DeliveryPickup,
	})
	assert.True(t, storeerr.IsValidation(err))

	_, err = engine.Checkout(user.ID, services.CheckoutRequest{
		PaymentMethod:  models.PaymentCOD,
		DeliveryMethod: "drone",
	})
	assert.True(t, storeerr.IsValidation(err))
}

func TestCheckoutRejectsForeignAddress(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "co8a@example.com", models.RoleCustomer)
	thief := createUser(t, db, "co8b@example.com", models.RoleCustomer)
	city := createCity(t, db, "Colombo", true)
	address := createAddress(t, db, owner, city)
	variant := createVariant(t, db, "CO-8", 10.0, 30)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(thief.ID, variant.ID, 1)
	require.NoError(t, err)

	_, err = newEngine(db).Checkout(thief.ID, codHomeRequest(address))

	var notAuth *storeerr.NotAuthorizedError
	assert.True(t, errors.As(err, &notAuth))
}

func TestCheckoutCreatesAddressFromDetails(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co9@example.com", models.RoleCustomer)
	createCity(t, db, "Matara", false)
	variant := createVariant(t, db, "CO-9", 10.0, 4)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, variant.ID, 1)
	require.NoError(t, err)

	order, err := newEngine(db).Checkout(user.ID, services.CheckoutRequest{
		PaymentMethod:  models.PaymentCOD,
		DeliveryMethod: models.DeliveryHome,
		AddressDetails: &services.AddressDetails{
			HouseNumber: "7",
			Street:      "Beach Road",
			City:        "Matara",
			State:       "Southern",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, order.AddressID)

	var address models.Address
	require.NoError(t, db.First(&address, "id = ?", *order.AddressID).Error)
	assert.Equal(t, user.ID, address.UserID)
	assert.Equal(t, "Matara", address.City)

	// Other city plus low stock: 7 + 3 days.
	assert.Equal(t, 10, order.EstimatedDeliveryDays)
}

func TestCheckoutLowStockEstimateMainCity(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "co10@example.com", models.RoleCustomer)
	city := createCity(t, db, "Colombo", true)
	address := createAddress(t, db, user, city)
	variant := createVariant(t, db, "CO-10", 10.0, 6)
	carts := services.NewCartService(db)

	_, err := carts.AddLine(user.ID, variant.ID, 1)
	require.NoError(t, err)

	order, err := newEngine(db).Checkout(user.ID, codHomeRequest(address))
	require.NoError(t, err)
	assert.Equal(t, 8, order.EstimatedDeliveryDays)
}

func TestConcurrentCheckoutsExhaustStockExactly(t *testing.T) {
	db := setupTestDB(t)
	variant := createVariant(t, db, "CO-11", 10.0, 3)
	carts := services.NewCartService(db)
	engine := newEngine(db)

	const shoppers = 6
	users := make([]*models.User, shoppers)
	for i := 0; i < shoppers; i++ {
		users[i] = createUser(t, db, string(rune('a'+i))+"-co11@example.com", models.RoleCustomer)
		_, err := carts.AddLine(users[i].ID, variant.ID, 1)
		require.NoError(t, err)
	}

	var placed, stockErrors int64
	var wg sync.WaitGroup
	wg.Add(shoppers)
	for i := 0; i < shoppers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := engine.Checkout(users[i].ID, services.CheckoutRequest{
				PaymentMethod:  models.PaymentCOD,
				DeliveryMethod: models.DeliveryPickup,
			})
			if err == nil {
				atomic.AddInt64(&placed, 1)
				return
			}
			var stockErr *storeerr.InsufficientStockError
			if errors.As(err, &stockErr) {
				atomic.AddInt64(&stockErrors, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(3), placed)
	assert.Equal(t, int64(shoppers-3), stockErrors)
	assert.Equal(t, 0, variantStock(t, db, variant.ID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(3), orderCount)
}
