package channel

import "errors"

// Domain-specific errors for channel operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrChannelNotFound is returned when a channel id is not in the store.
	// Most store operations treat unknown ids as no-ops instead; this error
	// is only surfaced by lookups that must distinguish the case.
	ErrChannelNotFound = errors.New("channel: not found")

	// ErrInvalidChannel is returned when channel configuration fails validation.
	ErrInvalidChannel = errors.New("channel: invalid configuration")
)
