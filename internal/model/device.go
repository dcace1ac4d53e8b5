package model

import (
	"strings"
	"time"
)

// DeviceID identifies one installation of the game client. It is generated
// once, persisted in a save slot and sent with every backend request.
type DeviceID string

// String returns the string representation of the device ID.
func (d DeviceID) String() string {
	return string(d)
}

// IsZero reports whether the device ID is empty or whitespace only.
func (d DeviceID) IsZero() bool {
	return strings.TrimSpace(string(d)) == ""
}

// SaveGame is the record stored in a persistent save slot.
type SaveGame struct {
	UniqueID DeviceID  `json:"unique_id" toml:"unique_id"`
	SavedAt  time.Time `json:"saved_at" toml:"saved_at"`
}
