package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/services"
	"github.com/example/meridian/internal/storeerr"
)

func TestFavoritesAddIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "fav1@example.com", models.RoleCustomer)
	variant := createVariant(t, db, "FAV-1", 10.0, 5)
	favorites := services.NewFavoritesService(db)

	require.NoError(t, favorites.Add(user.ID, variant.ProductID))
	require.NoError(t, favorites.Add(user.ID, variant.ProductID))

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ?", user.ID, variant.ProductID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFavoritesRemoveIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "fav2@example.com", models.RoleCustomer)
	variant := createVariant(t, db, "FAV-2", 10.0, 5)
	favorites := services.NewFavoritesService(db)

	require.NoError(t, favorites.Add(user.ID, variant.ProductID))
	require.NoError(t, favorites.Remove(user.ID, variant.ProductID))
	// Removing an absent pair is a no-op, not an error.
	require.NoError(t, favorites.Remove(user.ID, variant.ProductID))

	list, err := favorites.List(user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFavoritesAddUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "fav3@example.com", models.RoleCustomer)
	favorites := services.NewFavoritesService(db)

	err := favorites.Add(user.ID, user.ID) // no product with this ID
	assert.True(t, storeerr.IsNotFound(err))
}

func TestFavoritesListPreloadsProducts(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "fav4@example.com", models.RoleCustomer)
	a := createVariant(t, db, "FAV-4A", 10.0, 5)
	b := createVariant(t, db, "FAV-4B", 10.0, 5)
	favorites := services.NewFavoritesService(db)

	require.NoError(t, favorites.Add(user.ID, a.ProductID))
	require.NoError(t, favorites.Add(user.ID, b.ProductID))

	list, err := favorites.List(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, fav := range list {
		require.NotNil(t, fav.Product)
	}
}
