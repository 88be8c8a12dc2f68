package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is a payment result reported by the payment subsystem.
type PaymentRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status" binding:"required"`
}

// PaymentResponse describes a recorded payment.
type PaymentResponse struct {
	ID        int64     `json:"id"`
	Reference string    `json:"reference"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RefundRequest asks for a partial or full refund.
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// RefundResponse describes a refund request.
type RefundResponse struct {
	ID          int64     `json:"id"`
	Reference   string    `json:"reference"`
	PaymentID   int64     `json:"payment_id"`
	OrderID     int64     `json:"order_id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	RequestedBy int64     `json:"requested_by"`
	CreatedAt   time.Time `json:"created_at"`
}
