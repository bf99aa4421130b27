package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")

	ErrEmptyCart           = errors.New("cart is empty")
	ErrPermissionDenied    = errors.New("you do not have permission to perform this action")
	ErrIllegalTransition   = errors.New("illegal order status transition")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrDuplicateReferral   = errors.New("user has already been referred")
	ErrAlreadyReviewed     = errors.New("product already reviewed by this user")
	ErrNotEligibleToReview = errors.New("only customers with a delivered order may review this product")
	ErrEmailDelivery       = errors.New("email delivery failed")
	ErrInvalidCredentials  = errors.New("invalid login credentials")
	ErrInvalidToken        = errors.New("invalid token")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the product whose stock could not cover a request.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}
