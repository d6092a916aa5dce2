package settlementerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProofNotFound   = errors.New("payment proof not found")
	ErrAlreadySettled  = errors.New("already settled")
)

// settlement logic errors
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidTransition = errors.New("invalid proof status transition")
	ErrMissingReference  = errors.New("missing account reference")
)

// scheduling errors
var (
	ErrJobRunning = errors.New("job already running")
	ErrUnknownJob = errors.New("unknown job")
	ErrLeaseHeld  = errors.New("lease held by another instance")
)
