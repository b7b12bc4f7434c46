package receiver

import "github.com/stagecue/cuelight-core/internal/channel"

// View is the receiver's observable state, the protocol-level equivalent
// of its display. Rendering is the shell's concern; the adapter only
// maintains this struct and notifies on change.
type View struct {
	// Connected mirrors the transport's connectivity signal. While false
	// the rest of the view is stale and must be presented as unknown.
	Connected bool

	// Status is the last status received for the subscribed channel.
	Status channel.Status

	// Label, ColorHex and TextColorHex are the channel presentation from
	// the last status (label also updated by config messages).
	Label        string
	ColorHex     string
	TextColorHex string

	// CueLabel is cosmetic cue metadata from the last status.
	CueLabel string

	// ConfirmedSubscribers mirrors the transmitter's confirmation list.
	ConfirmedSubscribers []string

	// CanConfirm is true while an unanswered standby request is open.
	CanConfirm bool

	// Confirmed is true once this receiver has answered the current
	// request. Reset by every incoming status.
	Confirmed bool
}
