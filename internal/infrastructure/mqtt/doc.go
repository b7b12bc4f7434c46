// Package mqtt provides the broker connection shared by the transmitter
// and receiver roles.
//
// It wraps github.com/eclipse/paho.mqtt.golang with:
//
//   - Connection management with auto-reconnect and exponential backoff
//   - Last Will and Testament on the system status topic
//   - Tracked subscriptions restored automatically after reconnect
//   - Panic recovery around message handlers
//   - Topic builders for the cue light topic table (Topics)
//
// All channel statuses and configs are published retained so devices that
// join mid-show immediately converge on current state.
package mqtt
