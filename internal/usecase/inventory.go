package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// InventoryUseCase is the only path that mutates variant stock counters.
type InventoryUseCase struct {
	logger *slog.Logger
}

// NewInventoryUseCase constructs InventoryUseCase.
func NewInventoryUseCase(logger *slog.Logger) *InventoryUseCase {
	return &InventoryUseCase{logger: logger}
}

// Reserve claims qty units of variant for cart line. A shortfall is reported
// as *InsufficientStockError naming the line.
func (u *InventoryUseCase) Reserve(ctx context.Context, tx repository.Tx, line int, variantID int64, qty int) (*model.VariantStock, error) {
	stock, err := tx.Inventory().Reserve(ctx, variantID, qty)
	if err != nil {
		var stockErr *domainErrors.InsufficientStockError
		if errors.As(err, &stockErr) {
			stockErr.Line = line
			return nil, stockErr
		}
		return nil, err
	}
	if err := u.check(stock); err != nil {
		return nil, err
	}
	if stock.IsLowStock {
		u.logger.Info("variant stock is low",
			slog.Int64("variant_id", stock.VariantID),
			slog.Int("stock", stock.StockQuantity),
			slog.Int("threshold", stock.LowStockThreshold),
		)
	}
	return stock, nil
}

// Release returns qty units of variant to stock.
func (u *InventoryUseCase) Release(ctx context.Context, tx repository.Tx, variantID int64, qty int) (*model.VariantStock, error) {
	stock, err := tx.Inventory().Release(ctx, variantID, qty)
	if err != nil {
		return nil, err
	}
	if err := u.check(stock); err != nil {
		return nil, err
	}
	return stock, nil
}

func (u *InventoryUseCase) check(stock *model.VariantStock) error {
	if err := stock.Validate(); err != nil {
		u.logger.Error("stock counters out of range", slog.String("error", err.Error()))
		return err
	}
	return nil
}
