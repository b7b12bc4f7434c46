package show

import "errors"

// Sentinel errors for show persistence.
// Use errors.Is() to check error types.
var (
	// ErrLoadFailed indicates the show document could not be read.
	ErrLoadFailed = errors.New("loading show document failed")

	// ErrSaveFailed indicates the show document could not be written.
	ErrSaveFailed = errors.New("saving show document failed")
)
