package model

import (
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// VariantStock holds the inventory counters of a product variant.
type VariantStock struct {
	VariantID         int64
	StockQuantity     int
	ReservedQuantity  int
	LowStockThreshold int
	IsAvailable       bool
	IsLowStock        bool
	OutOfStock        bool
	UpdatedAt         time.Time
}

// Available is the quantity a new reservation may claim.
func (v *VariantStock) Available() int {
	return v.StockQuantity - v.ReservedQuantity
}

// Reserve moves qty units from stock into the reservation counter.
func (v *VariantStock) Reserve(qty int) error {
	if qty <= 0 {
		return domainErrors.ErrInvalidQuantity
	}
	if v.Available() < qty {
		return &domainErrors.InsufficientStockError{VariantID: v.VariantID, Requested: qty, Available: max(v.Available(), 0)}
	}
	v.StockQuantity -= qty
	v.ReservedQuantity += qty
	v.RecomputeFlags()
	return v.Validate()
}

// Release returns qty units to stock. The reservation counter is clamped at zero.
func (v *VariantStock) Release(qty int) error {
	if qty <= 0 {
		return domainErrors.ErrInvalidQuantity
	}
	v.StockQuantity += qty
	v.ReservedQuantity = max(v.ReservedQuantity-qty, 0)
	v.RecomputeFlags()
	return v.Validate()
}

// RecomputeFlags derives availability flags from the stock counter.
func (v *VariantStock) RecomputeFlags() {
	v.OutOfStock = v.StockQuantity == 0
	v.IsLowStock = v.StockQuantity <= v.LowStockThreshold
	v.IsAvailable = !v.OutOfStock
}

// Validate reports negative counters.
func (v *VariantStock) Validate() error {
	if v.StockQuantity < 0 || v.ReservedQuantity < 0 {
		return fmt.Errorf("%w: variant %d stock=%d reserved=%d",
			domainErrors.ErrInvariantViolation, v.VariantID, v.StockQuantity, v.ReservedQuantity)
	}
	return nil
}
