package channel

import "fmt"

// Status is the lifecycle state of a cue light channel.
type Status string

// Channel statuses. These are wire values: they appear verbatim in the
// status payloads published to receivers, so they must not change.
const (
	// StatusIdle is the resting state.
	StatusIdle Status = "idle"

	// StatusStandbyMaster is the armed state awaiting a master GO.
	StatusStandbyMaster Status = "standby_master"

	// StatusStandbySolo is the armed state awaiting a direct solo fire.
	StatusStandbySolo Status = "standby_solo"

	// StatusGo is the active fire state. It is time-bounded: the revert
	// scheduler returns the channel to idle after the GO duration.
	StatusGo Status = "go"
)

// IsStandby reports whether s is one of the two standby states.
func (s Status) IsStandby() bool {
	return s == StatusStandbyMaster || s == StatusStandbySolo
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusStandbyMaster, StatusStandbySolo, StatusGo:
		return true
	}
	return false
}

// Channel constraints.
const (
	// MinID and MaxID bound the addressable channel range.
	MinID = 1
	MaxID = 8

	// MaxLabelLength is the maximum channel label length.
	MaxLabelLength = 12
)

// Channel is one addressable cue light signal line.
//
// Status and ConfirmedSubscribers are runtime state owned by the Store;
// the remaining fields are configuration persisted in the show document.
type Channel struct {
	// NumericID is the channel number (1..8), unique within a show.
	NumericID int `json:"numericId"`

	// Label is the operator-facing name, at most 12 characters.
	Label string `json:"label"`

	// ColorName is the palette entry name (e.g. "Red").
	ColorName string `json:"colorName"`

	// ColorHex is the background colour for this channel's displays.
	ColorHex string `json:"colorHex"`

	// TextColorHex is the foreground colour paired with ColorHex.
	TextColorHex string `json:"textColorHex"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// ConfirmedSubscribers is the ordered list of receiver names that
	// have confirmed the current standby, deduplicated by exact name.
	ConfirmedSubscribers []string `json:"confirmed_subscribers"`
}

// DeepCopy returns a copy of the channel that shares no memory with the
// original. Callers can safely modify the result.
func (c *Channel) DeepCopy() *Channel {
	if c == nil {
		return nil
	}
	cp := *c
	if c.ConfirmedSubscribers != nil {
		cp.ConfirmedSubscribers = make([]string, len(c.ConfirmedSubscribers))
		copy(cp.ConfirmedSubscribers, c.ConfirmedSubscribers)
	}
	return &cp
}

// Validate checks channel configuration invariants.
func Validate(c *Channel) error {
	if c.NumericID < MinID || c.NumericID > MaxID {
		return fmt.Errorf("%w: id %d outside %d..%d", ErrInvalidChannel, c.NumericID, MinID, MaxID)
	}
	if len(c.Label) > MaxLabelLength {
		return fmt.Errorf("%w: label %q exceeds %d characters", ErrInvalidChannel, c.Label, MaxLabelLength)
	}
	if c.Status != "" && !c.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidChannel, c.Status)
	}
	return nil
}
