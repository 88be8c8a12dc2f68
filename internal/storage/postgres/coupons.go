package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type couponRepository struct {
	q querier
}

// GetByCode locks the coupon row so usage checks and the usage record of one
// checkout are not interleaved with another.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	const query = `SELECT id, code, type, value_cents, max_discount_cents, min_order_cents,
        valid_from, valid_until, active, max_uses, max_uses_per_user, current_uses,
        new_users_only, first_order_only, rules
        FROM coupons WHERE UPPER(code) = UPPER($1) FOR UPDATE`

	var (
		coupon                 model.Coupon
		couponType, rules      string
		value                  int64
		maxDiscount, minAmount *int64
	)
	err := r.q.QueryRow(ctx, query, code).Scan(
		&coupon.ID, &coupon.Code, &couponType, &value, &maxDiscount, &minAmount,
		&coupon.ValidFrom, &coupon.ValidUntil, &coupon.Active, &coupon.MaxUses, &coupon.MaxUsesPerUser,
		&coupon.CurrentUses, &coupon.NewUsersOnly, &coupon.FirstOrderOnly, &rules,
	)
	if err != nil {
		return nil, notFound(err)
	}

	if err := json.Unmarshal([]byte(rules), &coupon.Rules); err != nil {
		return nil, fmt.Errorf("decode rules of coupon %d: %w", coupon.ID, err)
	}
	coupon.Type = model.CouponType(couponType)
	coupon.Value = model.FromCents(value)
	coupon.MaxDiscount = model.NullFromCents(maxDiscount)
	coupon.MinOrderAmount = model.NullFromCents(minAmount)
	return &coupon, nil
}

func (r *couponRepository) CountUsages(ctx context.Context, couponID, userID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecordUsage increments current_uses under the usage cap and inserts the
// usage row. A cap reached by a concurrent checkout yields ErrCouponExhausted.
func (r *couponRepository) RecordUsage(ctx context.Context, usage *model.CouponUsage) error {
	const increment = `UPDATE coupons SET current_uses = current_uses + 1
        WHERE id = $1 AND (max_uses IS NULL OR current_uses < max_uses)
        RETURNING current_uses`

	var uses int
	if err := r.q.QueryRow(ctx, increment, usage.CouponID).Scan(&uses); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrCouponExhausted
		}
		return err
	}

	const insert = `INSERT INTO coupon_usages (coupon_id, user_id, order_id, discount_cents, order_amount_cents, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`

	return r.q.QueryRow(ctx, insert,
		usage.CouponID, usage.UserID, usage.OrderID, model.ToCents(usage.DiscountAmount),
		model.ToCents(usage.OrderAmount), usage.CreatedAt,
	).Scan(&usage.ID)
}
