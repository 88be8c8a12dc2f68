package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// Payment is a payment result recorded by the payment subsystem.
type Payment struct {
	ID        int64
	OrderID   int64
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentResult is the outcome reported by the payment subsystem.
type PaymentResult struct {
	Reference string
	Amount    decimal.Decimal
	Status    PaymentStatus
}

// RefundStatus tracks a refund request.
type RefundStatus string

const (
	RefundPending    RefundStatus = "pending"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundFailed     RefundStatus = "failed"
	RefundCancelled  RefundStatus = "cancelled"
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundPending:    {RefundProcessing, RefundCancelled},
	RefundProcessing: {RefundCompleted, RefundFailed, RefundCancelled},
}

// Terminal reports whether the refund can no longer change.
func (s RefundStatus) Terminal() bool {
	return s == RefundCompleted || s == RefundFailed || s == RefundCancelled
}

// Counts reports whether the refund counts against the refundable amount.
func (s RefundStatus) Counts() bool {
	return s != RefundFailed && s != RefundCancelled
}

// CheckTransition validates moving from s to next.
func (s RefundStatus) CheckTransition(next RefundStatus) error {
	if s == next {
		return &domainErrors.TransitionError{From: string(s), To: string(next), Err: domainErrors.ErrAlreadyInState}
	}
	for _, allowed := range refundTransitions[s] {
		if allowed == next {
			return nil
		}
	}
	return &domainErrors.TransitionError{From: string(s), To: string(next), Err: domainErrors.ErrInvalidTransition}
}

// PaymentRefund is a refund request consumed by the payment gateway integration.
type PaymentRefund struct {
	ID          int64
	Reference   uuid.UUID
	PaymentID   int64
	OrderID     int64
	Amount      decimal.Decimal
	Currency    string
	Reason      string
	Status      RefundStatus
	RequestedBy int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
