package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CouponRepository provides coupon lookup and usage accounting.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	CountUsages(ctx context.Context, couponID, userID int64) (int, error)
	// RecordUsage inserts the usage row and increments current_uses as one unit.
	// It fails with errors.ErrCouponExhausted when the global cap was reached concurrently.
	RecordUsage(ctx context.Context, usage *model.CouponUsage) error
}
