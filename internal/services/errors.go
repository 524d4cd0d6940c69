package services

import "errors"

var (
	// ErrValidation wraps form validation failures caught before any storage call
	ErrValidation = errors.New("validation failed")

	// ErrCatalogUnavailable signals a failed catalog load; callers keep their
	// previous feed state.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrAtCapacity signals a quantity increment past the product's stock
	ErrAtCapacity = errors.New("maximum quantity available reached")

	// ErrConfirmationRequired signals that a destructive change needs an
	// explicit user confirmation before it is applied.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrNotFound signals a missing record
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals an operation on a record the user does not own
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials signals a failed sign-in
	ErrInvalidCredentials = errors.New("invalid email or password")
)
