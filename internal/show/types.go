package show

import (
	"github.com/stagecue/cuelight-core/internal/channel"
	"github.com/stagecue/cuelight-core/internal/cue"
)

// Document is the persisted show: channel configuration plus the cue list.
//
// Channel statuses are runtime-only and are never part of the document;
// a loaded show always starts with every channel idle.
type Document struct {
	Channels []channel.Channel
	Cues     []cue.Cue
}

// DefaultDocument returns a fresh show with the default eight channels
// and an empty cue list.
func DefaultDocument() *Document {
	return &Document{
		Channels: channel.Defaults(),
		Cues:     nil,
	}
}
