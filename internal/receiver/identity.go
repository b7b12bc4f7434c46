package receiver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LoadOrCreateIdentity returns this receiver's durable identity.
//
// The identity is a uuid generated once on first boot and persisted to
// path; every later boot reuses it. It distinguishes physical devices in
// confirmations even when two receivers share a display name.
func LoadOrCreateIdentity(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("creating identity directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("writing identity: %w", err)
	}
	return id, nil
}
