package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepository reads buyer facts needed for coupon eligibility.
type UserRepository interface {
	GetBuyer(ctx context.Context, id int64) (*model.Buyer, error)
}
