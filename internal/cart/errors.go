package cart

import "errors"

var (
	ErrNoOwner         = errors.New("no cart owner")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)
