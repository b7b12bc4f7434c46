package mqtt

import (
	"fmt"
	"strings"
)

const (
	// maxTopicLength is the MQTT spec limit for topic names.
	maxTopicLength = 65535

	// maxPayloadSize limits payloads to 256KB (MQTT spec allows 256MB,
	// but cue light messages are tiny JSON documents).
	maxPayloadSize = 256 * 1024
)

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: MQTT topic (e.g., "cuelight/channel/3/status")
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: If true, broker stores message for new subscribers
//   - payload: Message content (typically JSON)
//
// Returns:
//   - error: If validation fails, not connected, or publish times out
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if err := validateTopic(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return fmt.Errorf("%w: qos %d exceeds maximum %d", ErrInvalidQoS, qos, maxQoS)
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d", ErrPayloadTooLarge, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: publish to %s timed out after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: publish to %s: %w", ErrPublishFailed, topic, err)
	}

	return nil
}

// PublishString is a convenience wrapper for string payloads.
func (c *Client) PublishString(topic string, qos byte, retained bool, payload string) error {
	return c.Publish(topic, qos, retained, []byte(payload))
}

// PublishRetained publishes a retained message at the client's default QoS.
// Channel statuses and configs are retained so late joiners see current state.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, byte(c.cfg.QoS), true, payload)
}

// validateTopic checks topic validity for publishing.
//
// Publishing rules (stricter than subscribing):
//   - Must not be empty
//   - Must not contain wildcards (+ or #)
//   - Must not exceed MQTT spec length limit
func validateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidTopic)
	}
	if len(topic) > maxTopicLength {
		return fmt.Errorf("%w: topic length %d exceeds maximum %d", ErrInvalidTopic, len(topic), maxTopicLength)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: topic %q contains wildcard characters", ErrInvalidTopic, topic)
	}
	return nil
}
