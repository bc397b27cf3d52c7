package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Callers classify failures with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("already exists")
	ErrCapacityExceeded = errors.New("cart capacity exceeded")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrDelivery         = errors.New("delivery failed")
	ErrAuth             = errors.New("authentication failed")
)

// ValidationError reports bad input detected before any store call.
// Cause is optional and lets a validation failure also match another kind
// (e.g. a product referencing a category that does not exist is both).
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrValidation, e.Cause}
	}
	return []error{ErrValidation}
}

// Invalid is shorthand for a field-level ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DeliveryError wraps a failure returned by the mail collaborator.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "delivery failed: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDelivery, e.Err}
}
