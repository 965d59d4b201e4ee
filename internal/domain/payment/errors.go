package payment

import "errors"

var (
	// ErrMissingUserID is returned in strict mode when a callback carries no user
	ErrMissingUserID = errors.New("userId is required")

	// ErrMissingPackageID is returned in strict mode when a callback carries no package
	ErrMissingPackageID = errors.New("packageId is required")

	// ErrProcessFailed is the generic reconciliation failure surfaced to callers;
	// the underlying cause is logged, never returned.
	ErrProcessFailed = errors.New("failed to process successful payment")

	// ErrRecordFailed is the generic failure-recording error
	ErrRecordFailed = errors.New("failed to record payment failure")

	ErrInternal = errors.New("internal error")
)
