package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteTransition records a channel status change.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - channelID: Numeric channel identifier (1-8)
//   - from: Status before the transition
//   - to: Status after the transition
//   - source: What drove the transition ("operator", "cue", "revert")
func (c *Client) WriteTransition(channelID int, from, to, source string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"channel_transitions",
		map[string]string{
			"channel": strconv.Itoa(channelID),
			"source":  source,
		},
		map[string]interface{}{
			"from": from,
			"to":   to,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteConfirmation records a receiver acknowledging a standby request.
//
// Parameters:
//   - channelID: Channel the confirmation targeted
//   - receiverName: Operator-assigned receiver name
func (c *Client) WriteConfirmation(channelID int, receiverName string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"confirmations",
		map[string]string{
			"channel": strconv.Itoa(channelID),
		},
		map[string]interface{}{
			"receiver": receiverName,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCueFired records a cue being executed.
//
// Parameters:
//   - cueNumber: Display cue number (e.g., "2.5")
//   - label: Cue label, may be empty
//   - channelCount: Number of channels the cue drove to go
func (c *Client) WriteCueFired(cueNumber, label string, channelCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"cues_fired",
		map[string]string{
			"cue_number": cueNumber,
		},
		map[string]interface{}{
			"label":         label,
			"channel_count": channelCount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point for measurements that don't fit the
// helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
