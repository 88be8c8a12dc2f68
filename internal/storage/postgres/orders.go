package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const orderColumns = `id, number, buyer_id, shipping_address_id, billing_address_id, currency,
    subtotal_cents, coupon_discount_cents, tax_cents, total_cents, coupon_id,
    status, payment_status, status_history, cancellation_reason, cancelled_by,
    cancelled_at, created_at, updated_at, deleted_at`

type orderRepository struct {
	q querier
}

func (r *orderRepository) NextNumber(ctx context.Context, day time.Time) (string, error) {
	const query = `INSERT INTO order_number_sequences (day, last_value) VALUES ($1, 1)
        ON CONFLICT (day) DO UPDATE SET last_value = order_number_sequences.last_value + 1
        RETURNING last_value`

	day = day.UTC()
	var seq int64
	if err := r.q.QueryRow(ctx, query, day.Format("2006-01-02")).Scan(&seq); err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%06d", day.Format("20060102"), seq), nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (number, buyer_id, shipping_address_id, billing_address_id, currency,
        subtotal_cents, coupon_discount_cents, tax_cents, total_cents, coupon_id,
        status, payment_status, status_history, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING id`

	history, err := json.Marshal(order.History)
	if err != nil {
		return err
	}

	err = r.q.QueryRow(ctx, query,
		order.Number, order.BuyerID, order.ShippingAddressID, order.BillingAddressID, order.Currency,
		model.ToCents(order.Subtotal), model.ToCents(order.CouponDiscount), model.ToCents(order.Tax),
		model.ToCents(order.Total), order.CouponID, string(order.Status), string(order.PaymentStatus),
		string(history), order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	switch {
	case err == nil:
		return nil
	case isPgError(err, pgUniqueViolation):
		return domainErrors.ErrAlreadyExists
	case isPgError(err, pgCheckViolation):
		return fmt.Errorf("create order: %w", domainErrors.ErrInvariantViolation)
	default:
		return err
	}
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return scanOrder(r.q.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL`
	return scanOrder(r.q.QueryRow(ctx, query, id))
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByBuyer counts every order ever placed by the buyer, archived ones included.
func (r *orderRepository) CountByBuyer(ctx context.Context, buyerID int64) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE buyer_id = $1`, buyerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	const query = `UPDATE orders SET status = $2, payment_status = $3, coupon_discount_cents = $4,
        total_cents = $5, coupon_id = $6, status_history = $7, cancellation_reason = $8,
        cancelled_by = $9, cancelled_at = $10, updated_at = $11
        WHERE id = $1 AND deleted_at IS NULL`

	history, err := json.Marshal(order.History)
	if err != nil {
		return err
	}

	tag, err := r.q.Exec(ctx, query,
		order.ID, string(order.Status), string(order.PaymentStatus), model.ToCents(order.CouponDiscount),
		model.ToCents(order.Total), order.CouponID, string(history), order.CancellationReason,
		order.CancelledBy, order.CancelledAt, order.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgCheckViolation) {
			return fmt.Errorf("update order %d: %w", order.ID, domainErrors.ErrInvariantViolation)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		order                                 model.Order
		subtotal, discount, tax, total        int64
		status, paymentStatus, historyPayload string
	)
	err := row.Scan(
		&order.ID, &order.Number, &order.BuyerID, &order.ShippingAddressID, &order.BillingAddressID,
		&order.Currency, &subtotal, &discount, &tax, &total, &order.CouponID,
		&status, &paymentStatus, &historyPayload, &order.CancellationReason, &order.CancelledBy,
		&order.CancelledAt, &order.CreatedAt, &order.UpdatedAt, &order.DeletedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	if err := json.Unmarshal([]byte(historyPayload), &order.History); err != nil {
		return nil, fmt.Errorf("decode status history of order %d: %w", order.ID, err)
	}
	order.Subtotal = model.FromCents(subtotal)
	order.CouponDiscount = model.FromCents(discount)
	order.Tax = model.FromCents(tax)
	order.Total = model.FromCents(total)
	order.Status = model.OrderStatus(status)
	order.PaymentStatus = model.PaymentStatus(paymentStatus)
	return &order, nil
}
