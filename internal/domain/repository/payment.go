package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentRepository stores payment results and refund requests.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	// LatestRefundable returns the newest payment of the order that can be refunded.
	LatestRefundable(ctx context.Context, orderID int64) (*model.Payment, error)
	UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error
	// RefundedTotal sums refunds of the payment that are not failed or cancelled.
	RefundedTotal(ctx context.Context, paymentID int64) (decimal.Decimal, error)
	CreateRefund(ctx context.Context, refund *model.PaymentRefund) error
	GetRefundForUpdate(ctx context.Context, refundID int64) (*model.PaymentRefund, error)
	UpdateRefundStatus(ctx context.Context, refund *model.PaymentRefund) error
}
