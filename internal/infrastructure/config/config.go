package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Device roles. One binary serves both ends of the protocol; the role
// decides which adapter is wired up at startup.
const (
	RoleTransmitter = "transmitter"
	RoleReceiver    = "receiver"
)

// Config is the root configuration structure for the cue light core.
// All configuration is loaded from YAML and can be overridden by environment
// variables.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Receiver ReceiverConfig `yaml:"receiver"`
}

// AppConfig contains identity and role settings.
type AppConfig struct {
	// ID is the root token of every MQTT topic. All devices in one
	// installation must share it.
	ID string `yaml:"id"`

	// Role selects which protocol adapter this device runs:
	// "transmitter" or "receiver".
	Role string `yaml:"role"`
}

// DatabaseConfig contains SQLite settings for the show document store.
// Only the transmitter opens the database.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
// Reconnection is the transport's own concern; the protocol adapters only
// observe the resulting connectivity signal.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains show history settings. Optional; when disabled
// no transition or confirmation points are written.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ReceiverConfig contains file paths for the receiver's durable state.
type ReceiverConfig struct {
	// SettingsPath is the receiver settings document
	// ({name, channel_id, broker_ip}).
	SettingsPath string `yaml:"settings_path"`

	// IdentityPath is the durable receiver identity file, generated once
	// and reused across restarts.
	IdentityPath string `yaml:"identity_path"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CUELIGHT_SECTION_KEY
// For example: CUELIGHT_MQTT_HOST, CUELIGHT_APP_ROLE
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// The role defaults to receiver: a misconfigured device should listen,
// not transmit.
func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			ID:   "cuelight",
			Role: RoleReceiver,
		},
		Database: DatabaseConfig{
			Path:        "./data/show.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Receiver: ReceiverConfig{
			SettingsPath: "./data/receiver.json",
			IdentityPath: "./data/receiver_id",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern:
// CUELIGHT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CUELIGHT_APP_ID"); v != "" {
		cfg.App.ID = v
	}
	if v := os.Getenv("CUELIGHT_APP_ROLE"); v != "" {
		cfg.App.Role = v
	}

	if v := os.Getenv("CUELIGHT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("CUELIGHT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CUELIGHT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CUELIGHT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("CUELIGHT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.App.ID == "" {
		errs = append(errs, "app.id is required")
	}
	if strings.ContainsAny(c.App.ID, "/+#") {
		errs = append(errs, "app.id must not contain MQTT topic separators or wildcards")
	}

	switch c.App.Role {
	case RoleTransmitter, RoleReceiver:
	default:
		errs = append(errs, fmt.Sprintf("app.role must be %q or %q", RoleTransmitter, RoleReceiver))
	}

	if c.App.Role == RoleTransmitter && c.Database.Path == "" {
		errs = append(errs, "database.path is required for the transmitter role")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
