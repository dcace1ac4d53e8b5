// Package file implements store.Slot with one TOML file per save slot.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"

	"github.com/alfredjeanlab/mirage/internal/model"
	"github.com/alfredjeanlab/mirage/internal/store"
)

// Store writes save games below a directory.
type Store struct {
	dir string
}

var _ store.Slot = (*Store)(nil)

// DefaultDir returns ~/.local/state/mirage/slots.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "mirage", "slots"), nil
}

// New creates dir if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file that holds key.
func (s *Store) Path(key store.Key) string {
	name := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(key.Name)
	return filepath.Join(s.dir, name+"-"+strconv.Itoa(key.UserIndex)+".toml")
}

func (s *Store) Load(_ context.Context, key store.Key) (*model.SaveGame, error) {
	var game model.SaveGame
	if _, err := toml.DecodeFile(s.Path(key), &game); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("decode slot %s: %w", key, err)
	}
	return &game, nil
}

// Save replaces the slot file atomically.
func (s *Store) Save(_ context.Context, key store.Key, game *model.SaveGame) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(game); err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	if err := renameio.WriteFile(s.Path(key), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
