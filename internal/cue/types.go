package cue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxLabelLength is the maximum cue label length.
const MaxLabelLength = 30

// Cue is a named, numbered bundle of channel transitions fired together as
// one show step.
type Cue struct {
	// ID is an opaque unique identifier.
	ID string `json:"id"`

	// Number is the display string exactly as the operator entered it
	// (e.g. "2.5" or "10").
	Number string `json:"cueNumber"`

	// NumberFloat is the numeric sort key parsed from Number.
	// The cue list is always kept sorted ascending by this value.
	NumberFloat float64 `json:"cueNumberFloat"`

	// Label is the operator-facing description, at most 30 characters.
	Label string `json:"label"`

	// Channels lists the channel ids this cue arms and fires.
	Channels []int `json:"channelsInCue"`
}

// GenerateID returns a new opaque cue identifier.
func GenerateID() string {
	return uuid.NewString()
}

// ParseNumber validates and parses a cue number entered during editing.
// Invalid input is rejected here, before any mutation of the cue list.
func ParseNumber(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty cue number", ErrInvalidCueNumber)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidCueNumber, s)
	}
	return f, nil
}

// Validate checks cue invariants before it is accepted into the list.
func Validate(c *Cue) error {
	if _, err := ParseNumber(c.Number); err != nil {
		return err
	}
	if len(c.Label) > MaxLabelLength {
		return fmt.Errorf("%w: label %q exceeds %d characters", ErrInvalidCue, c.Label, MaxLabelLength)
	}
	return nil
}

// DeepCopy returns a copy of the cue that shares no memory with the original.
func (c *Cue) DeepCopy() *Cue {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Channels != nil {
		cp.Channels = make([]int, len(c.Channels))
		copy(cp.Channels, c.Channels)
	}
	return &cp
}
