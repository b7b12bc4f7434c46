package cue

import "errors"

// Domain-specific errors for cue operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidCueNumber is returned when a cue number fails to parse.
	// The stored cue list is left untouched.
	ErrInvalidCueNumber = errors.New("cue: invalid cue number")

	// ErrInvalidCue is returned when a cue fails validation.
	ErrInvalidCue = errors.New("cue: invalid cue")

	// ErrCueNotFound is returned when a cue id is not in the list.
	ErrCueNotFound = errors.New("cue: not found")

	// ErrNoCurrentCue is returned when arming or firing with an empty list
	// or an invalid pointer.
	ErrNoCurrentCue = errors.New("cue: no current cue")

	// ErrAlreadyArmed is returned when arming a cue that is already armed.
	ErrAlreadyArmed = errors.New("cue: already armed")

	// ErrNotArmed is returned when firing a cue that has not been armed.
	ErrNotArmed = errors.New("cue: not armed")
)
