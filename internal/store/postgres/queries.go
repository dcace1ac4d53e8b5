package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/mirage/internal/model"
	"github.com/alfredjeanlab/mirage/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryLoadSlot(ctx context.Context, db executor, key store.Key) (*model.SaveGame, error) {
	row := db.QueryRowContext(ctx,
		`SELECT unique_id, saved_at FROM save_slots WHERE name = $1 AND user_index = $2`,
		key.Name, key.UserIndex,
	)
	var (
		id      string
		savedAt time.Time
	)
	if err := row.Scan(&id, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return &model.SaveGame{UniqueID: model.DeviceID(id), SavedAt: savedAt.UTC()}, nil
}

func querySaveSlot(ctx context.Context, db executor, key store.Key, game *model.SaveGame) error {
	savedAt := game.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO save_slots (name, user_index, unique_id, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, user_index)
		DO UPDATE SET unique_id = EXCLUDED.unique_id, saved_at = EXCLUDED.saved_at`,
		key.Name, key.UserIndex, string(game.UniqueID), savedAt,
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	return nil
}
