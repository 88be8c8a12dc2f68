package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type paymentRepository struct {
	q querier
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	const query = `INSERT INTO payments (order_id, reference, amount_cents, currency, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`

	err := r.q.QueryRow(ctx, query,
		payment.OrderID, payment.Reference, model.ToCents(payment.Amount), payment.Currency,
		string(payment.Status), payment.CreatedAt, payment.UpdatedAt,
	).Scan(&payment.ID)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *paymentRepository) LatestRefundable(ctx context.Context, orderID int64) (*model.Payment, error) {
	const query = `SELECT id, order_id, reference, amount_cents, currency, status, created_at, updated_at
        FROM payments
        WHERE order_id = $1 AND status IN ('complete', 'refunded', 'partially_refunded')
        ORDER BY created_at DESC, id DESC
        LIMIT 1
        FOR UPDATE`

	var (
		payment model.Payment
		amount  int64
		status  string
	)
	err := r.q.QueryRow(ctx, query, orderID).Scan(
		&payment.ID, &payment.OrderID, &payment.Reference, &amount, &payment.Currency,
		&status, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	payment.Amount = model.FromCents(amount)
	payment.Status = model.PaymentStatus(status)
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`, paymentID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// RefundedTotal sums refunds that still count against the payment.
func (r *paymentRepository) RefundedTotal(ctx context.Context, paymentID int64) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount_cents), 0) FROM payment_refunds
        WHERE payment_id = $1 AND status NOT IN ('failed', 'cancelled')`

	var cents int64
	if err := r.q.QueryRow(ctx, query, paymentID).Scan(&cents); err != nil {
		return decimal.Zero, err
	}
	return model.FromCents(cents), nil
}

func (r *paymentRepository) CreateRefund(ctx context.Context, refund *model.PaymentRefund) error {
	const query = `INSERT INTO payment_refunds (reference, payment_id, order_id, amount_cents, currency,
        reason, status, requested_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id`

	err := r.q.QueryRow(ctx, query,
		refund.Reference.String(), refund.PaymentID, refund.OrderID, model.ToCents(refund.Amount),
		refund.Currency, refund.Reason, string(refund.Status), refund.RequestedBy,
		refund.CreatedAt, refund.UpdatedAt,
	).Scan(&refund.ID)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *paymentRepository) GetRefundForUpdate(ctx context.Context, refundID int64) (*model.PaymentRefund, error) {
	const query = `SELECT id, reference, payment_id, order_id, amount_cents, currency, reason, status,
        requested_by, created_at, updated_at
        FROM payment_refunds WHERE id = $1 FOR UPDATE`

	return scanRefund(r.q.QueryRow(ctx, query, refundID))
}

func (r *paymentRepository) UpdateRefundStatus(ctx context.Context, refund *model.PaymentRefund) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE payment_refunds SET status = $2, updated_at = $3 WHERE id = $1`,
		refund.ID, string(refund.Status), refund.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func scanRefund(row pgx.Row) (*model.PaymentRefund, error) {
	var (
		refund            model.PaymentRefund
		reference, status string
		amount            int64
	)
	err := row.Scan(
		&refund.ID, &reference, &refund.PaymentID, &refund.OrderID, &amount, &refund.Currency,
		&refund.Reason, &status, &refund.RequestedBy, &refund.CreatedAt, &refund.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if err := refund.Reference.UnmarshalText([]byte(reference)); err != nil {
		return nil, err
	}
	refund.Amount = model.FromCents(amount)
	refund.Status = model.RefundStatus(status)
	return &refund, nil
}
