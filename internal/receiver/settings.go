package receiver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stagecue/cuelight-core/internal/channel"
)

// MaxNameLength is the maximum receiver name length.
const MaxNameLength = 12

const settingsFilePermissions = 0600

// Settings is the receiver's durable configuration document.
// Field names are the on-disk format and must not change.
type Settings struct {
	// Name identifies this receiver to the transmitter's operator.
	Name string `json:"name"`

	// ChannelID is the channel this receiver subscribes to.
	ChannelID int `json:"channel_id"`

	// BrokerIP is the broker address. A change takes effect through a
	// full session teardown and rebuild.
	BrokerIP string `json:"broker_ip"`
}

// DefaultSettings returns the settings used when no document exists yet.
func DefaultSettings() Settings {
	return Settings{
		Name:      "Receiver 1",
		ChannelID: channel.MinID,
		BrokerIP:  "localhost",
	}
}

// Validate checks settings invariants.
func (s *Settings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSettings)
	}
	if len(s.Name) > MaxNameLength {
		return fmt.Errorf("%w: name %q exceeds %d characters", ErrInvalidSettings, s.Name, MaxNameLength)
	}
	if s.ChannelID < channel.MinID || s.ChannelID > channel.MaxID {
		return fmt.Errorf("%w: channel %d outside %d..%d", ErrInvalidSettings, s.ChannelID, channel.MinID, channel.MaxID)
	}
	return nil
}

// LoadSettings reads the settings document from path.
// A missing or unreadable document yields the defaults; a receiver must
// come up usable on first boot.
func LoadSettings(path string) Settings {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s
	}
	if loaded.Name != "" {
		s.Name = loaded.Name
	}
	if loaded.ChannelID != 0 {
		s.ChannelID = loaded.ChannelID
	}
	if loaded.BrokerIP != "" {
		s.BrokerIP = loaded.BrokerIP
	}
	return s
}

// SaveSettings writes the settings document to path.
func SaveSettings(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(path, data, settingsFilePermissions); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
