package admin

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInternal = errors.New("internal error")
)
