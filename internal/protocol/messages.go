// Package protocol defines the wire payloads exchanged between the
// transmitter and receivers over the message bus.
//
// All payloads are JSON. Field names are part of the protocol and must not
// change. The transport delivers at-least-once per topic with possible
// duplication and no cross-topic ordering, so every consumer of these types
// must tolerate duplicates and out-of-order config versus status messages.
package protocol

import "encoding/json"

// StatusMessage is published on {app}/channel/{id}/status on every channel
// status transition.
//
// RequestID and ResponseTopic are present only when Status is a standby
// state: they carry the confirmation handshake. CueLabel is cosmetic
// metadata attached while a cue is current on the transmitter.
type StatusMessage struct {
	Status               string   `json:"status"`
	Label                string   `json:"label"`
	ColorHex             string   `json:"colorHex"`
	TextColorHex         string   `json:"textColorHex"`
	ConfirmedSubscribers []string `json:"confirmed_subscribers,omitempty"`
	CueLabel             string   `json:"cueLabel,omitempty"`
	RequestID            string   `json:"request_id,omitempty"`
	ResponseTopic        string   `json:"response_topic,omitempty"`
}

// ConfirmationMessage is published by a receiver to the response topic named
// in a standby StatusMessage, acknowledging that specific request.
type ConfirmationMessage struct {
	RequestID    string `json:"request_id"`
	ReceiverID   string `json:"receiver_id"`
	ReceiverName string `json:"receiver_name"`
}

// ConfigMessage is published on {app}/config/channel/{id} after a channel
// configuration change. It only carries presentation fields; receivers must
// never derive protocol state from it.
type ConfigMessage struct {
	Label    string `json:"label"`
	ColorHex string `json:"colorHex"`
}

// Decode unmarshals a payload into dst.
//
// A decode failure means the payload is not ours to process: callers drop
// the message at the boundary and never propagate the error past the
// message handler.
func Decode(payload []byte, dst any) error {
	return json.Unmarshal(payload, dst)
}

// Encode marshals a message for publishing.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}
