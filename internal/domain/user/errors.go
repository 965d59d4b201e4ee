package user

import "errors"

var (
	// ErrNotFound is returned when the user does not exist
	ErrNotFound = errors.New("user not found")

	ErrInternal = errors.New("internal error")
)
