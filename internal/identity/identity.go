// Package identity keeps the device identifier of this installation in a
// save slot and generates one on first use.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alfredjeanlab/mirage/internal/model"
	"github.com/alfredjeanlab/mirage/internal/store"
)

// Generator returns a new random device identifier.
type Generator func() (model.DeviceID, error)

// NewUUID generates a random (version 4) UUID string.
func NewUUID() (model.DeviceID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return model.DeviceID(id.String()), nil
}

// Store reads and writes the device identifier through a save slot.
// Storage failures are logged and reported as absent or not persisted.
type Store struct {
	slot   store.Slot
	key    store.Key
	logger *slog.Logger
	now    func() time.Time
}

// NewStore returns a Store over slot. A nil logger uses slog.Default().
func NewStore(slot store.Slot, key store.Key, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		slot:   slot,
		key:    key,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the saved identifier. ok is false when nothing usable was saved.
func (s *Store) Load(ctx context.Context) (id model.DeviceID, ok bool) {
	game, err := s.slot.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("load device id failed", "slot", s.key.String(), "err", err)
		}
		return "", false
	}
	if game.UniqueID.IsZero() {
		return "", false
	}
	return game.UniqueID, true
}

// Save persists id and reports whether it was written.
func (s *Store) Save(ctx context.Context, id model.DeviceID) bool {
	err := s.slot.Save(ctx, s.key, &model.SaveGame{UniqueID: id, SavedAt: s.now()})
	if err != nil {
		s.logger.Warn("save device id failed", "slot", s.key.String(), "err", err)
		return false
	}
	return true
}

// Bootstrap returns the saved device identifier, or generates and saves a
// new one. A failed save does not prevent the new identifier from being used
// for this process; it only won't survive a restart.
func (s *Store) Bootstrap(ctx context.Context, gen Generator) (model.DeviceID, error) {
	if id, ok := s.Load(ctx); ok {
		return id, nil
	}
	if gen == nil {
		gen = NewUUID
	}
	id, err := gen()
	if err != nil {
		return "", fmt.Errorf("generate device id: %w", err)
	}
	if s.Save(ctx, id) {
		s.logger.Info("device id created", "device_id", id.String(), "slot", s.key.String())
	} else {
		s.logger.Warn("device id not persisted, using it for this session only", "device_id", id.String())
	}
	return id, nil
}
