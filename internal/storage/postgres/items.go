package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const itemColumns = `id, order_id, variant_id, product_id, quantity, price_cents, discounted_price_cents,
    final_price_cents, snapshot, status, tracking_ref, shipped_at, delivered_at, return_deadline,
    created_at, updated_at`

type itemRepository struct {
	q querier
}

func (r *itemRepository) Create(ctx context.Context, item *model.OrderItem) error {
	const query = `INSERT INTO order_items (order_id, variant_id, product_id, quantity, price_cents,
        discounted_price_cents, final_price_cents, snapshot, status, return_deadline, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id`

	snapshot, err := json.Marshal(item.Snapshot)
	if err != nil {
		return err
	}

	err = r.q.QueryRow(ctx, query,
		item.OrderID, item.VariantID, item.ProductID, item.Quantity, model.ToCents(item.Price),
		model.NullableCents(item.DiscountedPrice), model.ToCents(item.FinalPrice), string(snapshot),
		string(item.Status), item.ReturnDeadline, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		if isPgError(err, pgCheckViolation) {
			return fmt.Errorf("create order item: %w", domainErrors.ErrInvariantViolation)
		}
		return err
	}
	return nil
}

func (r *itemRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) GetForUpdate(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 AND id = $2 FOR UPDATE`
	return scanItem(r.q.QueryRow(ctx, query, orderID, itemID))
}

func (r *itemRepository) Update(ctx context.Context, item *model.OrderItem) error {
	const query = `UPDATE order_items SET status = $2, tracking_ref = $3, shipped_at = $4,
        delivered_at = $5, updated_at = $6 WHERE id = $1`

	tag, err := r.q.Exec(ctx, query,
		item.ID, string(item.Status), item.TrackingRef, item.ShippedAt, item.DeliveredAt, item.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*model.OrderItem, error) {
	var (
		item             model.OrderItem
		price, final     int64
		discounted       *int64
		snapshot, status string
	)
	err := row.Scan(
		&item.ID, &item.OrderID, &item.VariantID, &item.ProductID, &item.Quantity, &price, &discounted,
		&final, &snapshot, &status, &item.TrackingRef, &item.ShippedAt, &item.DeliveredAt,
		&item.ReturnDeadline, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	if err := json.Unmarshal([]byte(snapshot), &item.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot of item %d: %w", item.ID, err)
	}
	item.Price = model.FromCents(price)
	item.DiscountedPrice = model.NullFromCents(discounted)
	item.FinalPrice = model.FromCents(final)
	item.Status = model.FulfillmentStatus(status)
	return &item, nil
}
