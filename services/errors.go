package services

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes; everything else becomes a generic server error.
var (
	// ErrNotFound indicates a user, course, or order could not be resolved.
	ErrNotFound = errors.New("record not found")

	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates the caller does not own the order.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidSignature indicates a cryptographic mismatch. By the time a
	// caller sees it the order has already been durably marked failed.
	ErrInvalidSignature = errors.New("invalid payment signature")

	// ErrInvalidOrderState indicates an operation against a terminally
	// failed order. No state is mutated.
	ErrInvalidOrderState = errors.New("order already failed")

	// ErrDuplicate indicates a uniqueness constraint rejected an insert.
	ErrDuplicate = errors.New("duplicate record")
)
