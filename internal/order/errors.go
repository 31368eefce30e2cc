package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart     = errors.New("cart is empty, nothing to order")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrBadTransition = errors.New("illegal status transition")
)

// ValidationError reports every violated checkout field, not just the first.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid checkout input: " + strings.Join(e.Fields, ", ")
}

// PlacementError wraps a failure inside the order transaction. Retryable
// separates transient infrastructure trouble (worth a "please try again")
// from permanent conditions; the wrapped cause is for logs, not end users.
type PlacementError struct {
	Retryable bool
	Err       error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("order placement failed (retryable=%t): %v", e.Retryable, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }
