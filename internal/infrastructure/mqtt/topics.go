package mqtt

import "fmt"

// DefaultAppID is the topic root used when no application id is configured.
// All devices in one installation must share the same root token.
const DefaultAppID = "cuelight"

// Topics provides builders for cue light MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{AppID: "cuelight"}
//	statusTopic := topics.ChannelStatus(2)
//	// Returns: "cuelight/channel/2/status"
type Topics struct {
	// AppID is the root token of every topic. Empty uses DefaultAppID.
	AppID string
}

func (t Topics) root() string {
	if t.AppID == "" {
		return DefaultAppID
	}
	return t.AppID
}

// ChannelStatus returns the status topic for a channel. The transmitter
// publishes a status message here on every channel transition.
//
// Example: cuelight/channel/2/status
func (t Topics) ChannelStatus(channelID int) string {
	return fmt.Sprintf("%s/channel/%d/status", t.root(), channelID)
}

// Confirmations returns the confirmation topic for one transmitter instance.
// Receivers publish confirmations here; the topic is instance-scoped so a
// replacement transmitter never receives confirmations addressed to its
// predecessor's requests.
//
// Example: cuelight/confirmations/tx-9f2c41d8
func (t Topics) Confirmations(instanceID string) string {
	return fmt.Sprintf("%s/confirmations/%s", t.root(), instanceID)
}

// ChannelConfig returns the configuration topic for a channel. The
// transmitter publishes label/colour updates here; receivers treat them as
// cosmetic only.
//
// Example: cuelight/config/channel/2
func (t Topics) ChannelConfig(channelID int) string {
	return fmt.Sprintf("%s/config/channel/%d", t.root(), channelID)
}

// SystemCueInfo returns the global cue information topic. Receivers
// subscribe to it; nothing publishes there yet. Reserved.
//
// Example: cuelight/system/cue_info
func (t Topics) SystemCueInfo() string {
	return fmt.Sprintf("%s/system/cue_info", t.root())
}

// SystemStatus returns the device presence topic used for online/offline
// status and the Last Will and Testament.
//
// Example: cuelight/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.root())
}

// AllChannelStatuses returns a pattern matching every channel status topic.
//
// Pattern: cuelight/channel/+/status
func (t Topics) AllChannelStatuses() string {
	return fmt.Sprintf("%s/channel/+/status", t.root())
}
