package utils

import "errors"

// Sentinel errors for the service layer. Services wrap these with %w and
// context; handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDelivery marks notification failures. It is logged at the dispatcher
	// boundary and never surfaced to the request that triggered the send.
	ErrDelivery = errors.New("delivery failed")
)
