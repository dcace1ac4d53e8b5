// Package memory implements store.Slot in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/alfredjeanlab/mirage/internal/model"
	"github.com/alfredjeanlab/mirage/internal/store"
)

// Store keeps save games in a map. Nothing survives the process.
type Store struct {
	mu    sync.RWMutex
	games map[store.Key]model.SaveGame
}

var _ store.Slot = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{games: make(map[store.Key]model.SaveGame)}
}

func (s *Store) Load(_ context.Context, key store.Key) (*model.SaveGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

func (s *Store) Save(_ context.Context, key store.Key, game *model.SaveGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[key] = *game
	return nil
}

func (s *Store) Close() error { return nil }
