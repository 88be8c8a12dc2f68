package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// CartUseCase manages the buyer's cart ahead of checkout.
type CartUseCase struct {
	carts CartProvider
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(carts CartProvider) *CartUseCase {
	return &CartUseCase{carts: carts}
}

// Cart returns buyer's cart.
func (u *CartUseCase) Cart(ctx context.Context, buyerID int64) (*model.Cart, error) {
	return u.carts.Cart(ctx, buyerID)
}

// AddLine appends line to buyer's cart.
func (u *CartUseCase) AddLine(ctx context.Context, buyerID int64, line model.CartLine) error {
	if line.VariantID <= 0 {
		return domainErrors.ErrNotFound
	}
	if line.Quantity <= 0 {
		return domainErrors.ErrInvalidQuantity
	}
	return u.carts.AddLine(ctx, buyerID, line)
}
