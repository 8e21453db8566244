package storeerr

import (
	"errors"
	"fmt"
)

// ValidationError reports invalid or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing cart, order, variant or similar resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// NotFound builds a NotFoundError for the named resource.
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// NotAuthorizedError reports an access attempt by the wrong actor, such as a
// non-owner address or a non-admin status change.
type NotAuthorizedError struct {
	Msg string
}

func (e *NotAuthorizedError) Error() string { return e.Msg }

// NotAuthorized builds a NotAuthorizedError.
func NotAuthorized(format string, args ...any) error {
	return &NotAuthorizedError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the variant that sank a checkout. Checkout is
// all-or-nothing, so a single one of these aborts the whole order.
type InsufficientStockError struct {
	VariantName string
	SKU         string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.VariantName, e.Available, e.Requested)
}

// IllegalTransitionError reports a status-machine violation.
type IllegalTransitionError struct {
	Field string
	From  string
	To    string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition from %q to %q", e.Field, e.From, e.To)
}

// PaymentDeclinedError reports a card capture decline. With
// capture-before-finalize, no order exists once this is returned.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
