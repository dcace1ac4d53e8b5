// Package store defines the persistence interface for save slots and the
// backends that implement it.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/mirage/internal/model"
)

// ErrNotFound is returned by Slot.Load when nothing was saved under a key.
var ErrNotFound = errors.New("save slot not found")

// DefaultSlotName is the slot the device identity is stored in.
const DefaultSlotName = "MirageSDK"

// Key addresses one save slot: a slot name and a local user index.
type Key struct {
	Name      string
	UserIndex int
}

// DefaultKey returns the key of the device identity slot.
func DefaultKey() Key {
	return Key{Name: DefaultSlotName}
}

// String renders the key as "name/index".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Name, k.UserIndex)
}

// Slot defines the persistence interface for save games.
type Slot interface {
	// Load returns the save game stored under key, or ErrNotFound.
	Load(ctx context.Context, key Key) (*model.SaveGame, error)
	// Save creates or replaces the save game stored under key.
	Save(ctx context.Context, key Key, game *model.SaveGame) error

	// Lifecycle
	Close() error
}
