package mqtt

import (
	"fmt"
	"strings"
)

// Subscribe registers a handler for messages on the specified topic.
//
// The subscription is tracked and automatically restored on reconnection.
// Subscribing to the same topic twice replaces the previous handler.
//
// Parameters:
//   - topic: MQTT topic filter, wildcards allowed (e.g., "cuelight/channel/+/status")
//   - qos: Quality of Service level (0, 1, or 2)
//   - handler: Callback invoked for each received message
//
// Returns:
//   - error: If validation fails, not connected, or subscribe times out
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := validateSubscribeTopic(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return fmt.Errorf("%w: qos %d exceeds maximum %d", ErrInvalidQoS, qos, maxQoS)
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: subscribe to %s timed out after %v", ErrSubscribeFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: subscribe to %s: %w", ErrSubscribeFailed, topic, err)
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
	}
	c.subMu.Unlock()

	return nil
}

// Unsubscribe removes a subscription and stops tracking it for reconnects.
//
// Unsubscribing from a topic with no active subscription is not an error.
func (c *Client) Unsubscribe(topic string) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: unsubscribe from %s timed out after %v", ErrSubscribeFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: unsubscribe from %s: %w", ErrSubscribeFailed, topic, err)
	}

	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	return nil
}

// SubscriptionCount returns the number of tracked subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription reports whether the topic currently has a tracked handler.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, ok := c.subscriptions[topic]
	return ok
}

// validateSubscribeTopic checks topic filter validity for subscribing.
//
// Subscription rules (wildcards allowed, placement matters):
//   - Must not be empty
//   - '#' may only appear as the final level
//   - '+' must occupy an entire level
func validateSubscribeTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidTopic)
	}
	if len(topic) > maxTopicLength {
		return fmt.Errorf("%w: topic length %d exceeds maximum %d", ErrInvalidTopic, len(topic), maxTopicLength)
	}

	levels := strings.Split(topic, "/")
	for i, level := range levels {
		if strings.Contains(level, "#") {
			if level != "#" || i != len(levels)-1 {
				return fmt.Errorf("%w: '#' must be the final topic level in %q", ErrInvalidTopic, topic)
			}
		}
		if strings.Contains(level, "+") && level != "+" {
			return fmt.Errorf("%w: '+' must occupy an entire topic level in %q", ErrInvalidTopic, topic)
		}
	}

	return nil
}
