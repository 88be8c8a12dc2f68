package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const stockColumns = `id, stock_quantity, reserved_quantity, low_stock_threshold,
    is_available, is_low_stock, out_of_stock, updated_at`

type inventoryRepository struct {
	q      querier
	logger *slog.Logger
}

// Reserve moves qty units from stock into reservation. The availability
// check and the mutation are one statement, so the row lock taken by the
// UPDATE serializes concurrent reservations of the same variant.
func (r *inventoryRepository) Reserve(ctx context.Context, variantID int64, qty int) (*model.VariantStock, error) {
	if qty <= 0 {
		return nil, domainErrors.ErrInvalidQuantity
	}

	query := `UPDATE product_variants SET
        stock_quantity = stock_quantity - $2,
        reserved_quantity = reserved_quantity + $2,
        out_of_stock = (stock_quantity - $2) = 0,
        is_low_stock = (stock_quantity - $2) <= low_stock_threshold,
        is_available = (stock_quantity - $2) <> 0,
        updated_at = NOW()
        WHERE id = $1 AND stock_quantity - reserved_quantity >= $2
        RETURNING ` + stockColumns

	stock, err := scanStock(r.q.QueryRow(ctx, query, variantID, qty))
	switch {
	case err == nil:
		return stock, nil
	case errors.Is(err, domainErrors.ErrNotFound):
		current, getErr := r.Get(ctx, variantID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &domainErrors.InsufficientStockError{
			VariantID: variantID,
			Requested: qty,
			Available: max(current.Available(), 0),
		}
	default:
		return nil, r.counterError(err, "reserve", variantID, qty)
	}
}

// Release returns qty units to stock. It is never refused.
func (r *inventoryRepository) Release(ctx context.Context, variantID int64, qty int) (*model.VariantStock, error) {
	if qty <= 0 {
		return nil, domainErrors.ErrInvalidQuantity
	}

	query := `UPDATE product_variants SET
        stock_quantity = stock_quantity + $2,
        reserved_quantity = GREATEST(reserved_quantity - $2, 0),
        out_of_stock = (stock_quantity + $2) = 0,
        is_low_stock = (stock_quantity + $2) <= low_stock_threshold,
        is_available = (stock_quantity + $2) <> 0,
        updated_at = NOW()
        WHERE id = $1
        RETURNING ` + stockColumns

	stock, err := scanStock(r.q.QueryRow(ctx, query, variantID, qty))
	if err != nil {
		return nil, r.counterError(err, "release", variantID, qty)
	}
	return stock, nil
}

func (r *inventoryRepository) Get(ctx context.Context, variantID int64) (*model.VariantStock, error) {
	return scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM product_variants WHERE id = $1`, variantID))
}

func (r *inventoryRepository) counterError(err error, op string, variantID int64, qty int) error {
	if !isPgError(err, pgCheckViolation) {
		return err
	}
	r.logger.Error("stock counter invariant violated",
		slog.String("op", op),
		slog.Int64("variant_id", variantID),
		slog.Int("quantity", qty),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s variant %d: %w", op, variantID, domainErrors.ErrInvariantViolation)
}

func scanStock(row pgx.Row) (*model.VariantStock, error) {
	var stock model.VariantStock
	err := row.Scan(
		&stock.VariantID, &stock.StockQuantity, &stock.ReservedQuantity, &stock.LowStockThreshold,
		&stock.IsAvailable, &stock.IsLowStock, &stock.OutOfStock, &stock.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &stock, nil
}
