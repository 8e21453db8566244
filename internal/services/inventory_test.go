package services_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meridian/internal/services"
	"github.com/example/meridian/internal/storeerr"
)

func TestReserveDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	variant := createVariant(t, db, "INV-1", 10.0, 7)
	ledger := services.NewInventoryLedger(db)

	require.NoError(t, ledger.Reserve(variant.ID, 3))
	assert.Equal(t, 4, variantStock(t, db, variant.ID))
}

func TestReserveInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	variant := createVariant(t, db, "INV-2", 10.0, 2)
	ledger := services.NewInventoryLedger(db)

	err := ledger.Reserve(variant.ID, 5)

	var stockErr *storeerr.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Variant INV-2", stockErr.VariantName)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	// Nothing was decremented on the failed attempt.
	assert.Equal(t, 2, variantStock(t, db, variant.ID))
}

func TestReserveUnknownVariant(t *testing.T) {
	db := setupTestDB(t)
	variant := createVariant(t, db, "INV-3", 10.0, 2)
	ledger := services.NewInventoryLedger(db)

	require.NoError(t, db.Delete(variant).Error)
	err := ledger.Reserve(variant.ID, 1)
	assert.True(t, storeerr.IsNotFound(err))
}

func TestReleaseRestoresStock(t *testing.T) {
	db := setupTestDB(t)
	variant := createVariant(t, db, "INV-4", 10.0, 5)
	ledger := services.NewInventoryLedger(db)

	require.NoError(t, ledger.Reserve(variant.ID, 5))
	require.NoError(t, ledger.Release(variant.ID, 5))
	assert.Equal(t, 5, variantStock(t, db, variant.ID))
}

func TestSetStockRejectsNegative(t *testing.T) {
	db := setupTestDB(t)
	variant := createVariant(t, db, "INV-5", 10.0, 5)
	ledger := services.NewInventoryLedger(db)

	err := ledger.SetStock(variant.ID, -1)
	assert.True(t, storeerr.IsValidation(err))

	require.NoError(t, ledger.SetStock(variant.ID, 0))
	assert.Equal(t, 0, variantStock(t, db, variant.ID))
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	db := setupTestDB(t)
	variant := createVariant(t, db, "INV-6", 10.0, 5)
	ledger := services.NewInventoryLedger(db)

	const attempts = 12
	var succeeded, stockErrors int64
	var wg sync.WaitGroup
	wg.Add(attempts)

	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			err := ledger.Reserve(variant.ID, 1)
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			default:
				var stockErr *storeerr.InsufficientStockError
				if errors.As(err, &stockErr) {
					atomic.AddInt64(&stockErrors, 1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), succeeded)
	assert.Equal(t, int64(attempts-5), stockErrors)
	assert.Equal(t, 0, variantStock(t, db, variant.ID))
}
