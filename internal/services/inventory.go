package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/models"
	"github.com/example/meridian/internal/storeerr"
)

// LowStockThreshold marks variants whose remaining stock slows delivery down.
const LowStockThreshold = 10

// InventoryLedger owns every mutation of variant stock. Reservation is a
// single conditional update so concurrent checkouts cannot oversell.
type InventoryLedger struct {
	db *gorm.DB
}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger(db *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

// WithTx returns a ledger bound to the given transaction.
func (l *InventoryLedger) WithTx(tx *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: tx}
}

// Reserve decrements a variant's stock by quantity, but only if enough stock
// remains. The guard lives in the WHERE clause, so under concurrent load the
// database decides a single winner; a zero-row update means the stock is gone.
func (l *InventoryLedger) Reserve(variantID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return storeerr.Validation("reserve quantity must be at least 1")
	}

	res := l.db.Model(&models.Variant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var variant models.Variant
		if err := l.db.First(&variant, "id = ?", variantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storeerr.NotFound("variant")
			}
			return err
		}
		return &storeerr.InsufficientStockError{
			VariantName: variant.Name,
			SKU:         variant.SKU,
			Available:   variant.StockQuantity,
			Requested:   quantity,
		}
	}

	return nil
}

// Release returns previously reserved stock, used when a compensation outside
// the transaction boundary is needed.
func (l *InventoryLedger) Release(variantID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return storeerr.Validation("release quantity must be at least 1")
	}

	res := l.db.Model(&models.Variant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storeerr.NotFound("variant")
	}
	return nil
}

// SetStock applies an absolute admin stock edit. Negative targets are
// rejected; the non-negative invariant is not the admin's to break.
func (l *InventoryLedger) SetStock(variantID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return storeerr.Validation("stock quantity cannot be negative")
	}

	res := l.db.Model(&models.Variant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock_quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storeerr.NotFound("variant")
	}
	return nil
}
