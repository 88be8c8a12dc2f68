package postgres

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type userRepository struct {
	q querier
}

func (r *userRepository) GetBuyer(ctx context.Context, id int64) (*model.Buyer, error) {
	var buyer model.Buyer
	if err := r.q.QueryRow(ctx, `SELECT id, created_at FROM users WHERE id = $1`, id).Scan(&buyer.ID, &buyer.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &buyer, nil
}
