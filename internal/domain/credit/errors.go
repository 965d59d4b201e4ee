package credit

import "errors"

var (
	// ErrInsufficientCredits is returned when a usage entry exceeds the balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInvalidType is returned for an unknown transaction type
	ErrInvalidType = errors.New("invalid transaction type")

	// ErrUserNotFound is returned when the user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	ErrInternal = errors.New("internal error")
)
