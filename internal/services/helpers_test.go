package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/meridian/internal/database"
	"github.com/example/meridian/internal/models"
)

// setupTestDB opens an in-memory SQLite database private to the test and
// applies the full schema. A single connection keeps concurrent writers
// queued at the pool instead of hitting SQLite lock errors.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCity(t *testing.T, db *gorm.DB, name string, isMain bool) *models.City {
	t.Helper()
	city := models.City{Name: name, IsMainCity: isMain}
	require.NoError(t, db.Create(&city).Error)
	return &city
}

func createVariant(t *testing.T, db *gorm.DB, sku string, price float64, stock int) *models.Variant {
	t.Helper()
	product := models.Product{Name: "Product " + sku}
	require.NoError(t, db.Create(&product).Error)

	variant := models.Variant{
		ProductID:     product.ID,
		SKU:           sku,
		Name:          "Variant " + sku,
		Price:         price,
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&variant).Error)
	return &variant
}

func createAddress(t *testing.T, db *gorm.DB, user *models.User, city *models.City) *models.Address {
	t.Helper()
	address := models.Address{
		UserID:      user.ID,
		HouseNumber: "12",
		Street:      "Main Street",
		City:        city.Name,
		State:       "Western",
		CityID:      &city.ID,
	}
	require.NoError(t, db.Create(&address).Error)
	return &address
}

func variantStock(t *testing.T, db *gorm.DB, id interface{}) int {
	t.Helper()
	var variant models.Variant
	require.NoError(t, db.First(&variant, "id = ?", id).Error)
	return variant.StockQuantity
}
