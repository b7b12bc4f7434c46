package receiver

import "errors"

// Sentinel errors for receiver operations.
// Use errors.Is() to check error types.
var (
	// ErrInvalidSettings indicates a settings document failed validation.
	ErrInvalidSettings = errors.New("invalid receiver settings")

	// ErrNothingToConfirm indicates Confirm was called with no open
	// standby request.
	ErrNothingToConfirm = errors.New("no standby request to confirm")

	// ErrAlreadyConfirmed indicates the current request was already
	// confirmed; the latch only opens again on the next status.
	ErrAlreadyConfirmed = errors.New("standby request already confirmed")
)
