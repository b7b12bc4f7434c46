// Package config provides YAML configuration loading for the cue light core.
//
// Configuration is loaded in three layers: hardcoded defaults, the YAML file,
// and CUELIGHT_* environment variable overrides, each layer overriding the
// previous. The loaded configuration is validated before use; an invalid
// configuration fails startup rather than producing a half-working device.
//
// One configuration file serves both roles. A transmitter reads the database
// section for its show document store; a receiver reads the receiver section
// for its settings and identity paths, and lets the settings document
// override the broker host at runtime.
package config
