package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrUnavailable        = errors.New("dependency temporarily unavailable")

	ErrEmptyCart         = errors.New("cart is empty")
	ErrAddressRequired   = errors.New("shipping and billing addresses are required")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyInState    = errors.New("order already in requested status")
	ErrNotCancellable    = errors.New("order cannot be cancelled")
	ErrReasonTooShort    = errors.New("cancellation reason is too short")
	ErrTrackingRequired  = errors.New("tracking reference is required")
	ErrOrderCancelled    = errors.New("order is cancelled")
	ErrNotArchivable     = errors.New("order is not in a terminal status")

	ErrNoPaymentFound = errors.New("no payment found")

	ErrCouponInactive       = errors.New("coupon is not active")
	ErrCouponNotStarted     = errors.New("coupon is not valid yet")
	ErrCouponExpired        = errors.New("coupon has expired")
	ErrCouponExhausted      = errors.New("coupon usage limit reached")
	ErrCouponNewUsersOnly   = errors.New("coupon is for new users only")
	ErrCouponFirstOrderOnly = errors.New("coupon is for first orders only")
	ErrCouponUserNotAllowed = errors.New("coupon is not available for this user")
	ErrCouponUserLimit      = errors.New("coupon per-user limit reached")
	ErrCouponMinimumNotMet  = errors.New("coupon minimum order amount not met")
	ErrCouponNotApplicable  = errors.New("coupon does not apply to order lines")
)

// InsufficientStockError names the cart line whose reservation failed.
type InsufficientStockError struct {
	Line      int
	VariantID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for line %d (variant %d): requested %d, available %d",
		e.Line, e.VariantID, e.Requested, e.Available)
}

// Is reports ErrInsufficientStock so callers can match either form.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From string
	To   string
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s -> %s: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Retryable is implemented by errors that know when the failed call may be
// attempted again.
type Retryable interface {
	error
	RetryDelay() time.Duration
}
