// Package influxdb records show history to an InfluxDB v2 time-series
// database.
//
// History recording is strictly optional: when disabled in config (or the
// server is unreachable at startup) the transmitter runs without it, and
// every write helper is a no-op on a disconnected client.
//
// Measurements:
//   - channel_transitions: every status change, tagged by channel and source
//   - confirmations: receiver acknowledgements of standby requests
//   - cues_fired: cue executions with channel counts
//
// Writes are batched and asynchronous so show-critical paths never block
// on the history backend.
package influxdb
