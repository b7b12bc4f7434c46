package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
// Use errors.Is() to check error types.
var (
	// ErrDisabled indicates history recording is turned off in config.
	ErrDisabled = errors.New("influxdb disabled in configuration")

	// ErrConnectionFailed indicates the initial connection could not be established.
	ErrConnectionFailed = errors.New("influxdb connection failed")

	// ErrNotConnected indicates an operation was attempted while disconnected.
	ErrNotConnected = errors.New("influxdb not connected")
)
