package services

import "errors"

// Error taxonomy surfaced to handlers. Services wrap these sentinels with
// fmt.Errorf("%w: ...") so callers can classify with errors.Is while still
// seeing the specific cause.
var (
	// ErrValidation marks malformed input; no state was mutated.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing campaign, customer or order.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an operation rejected by the current state, such as
	// sending an already-sent campaign or deleting a customer with orders.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials marks a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
