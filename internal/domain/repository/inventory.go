package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// InventoryRepository is the only writer of variant stock counters.
type InventoryRepository interface {
	// Reserve atomically checks availability and moves qty into the reservation.
	// It returns *errors.InsufficientStockError when the check fails.
	Reserve(ctx context.Context, variantID int64, qty int) (*model.VariantStock, error)
	// Release returns qty to stock, clamping the reservation at zero.
	Release(ctx context.Context, variantID int64, qty int) (*model.VariantStock, error)
	Get(ctx context.Context, variantID int64) (*model.VariantStock, error)
}
