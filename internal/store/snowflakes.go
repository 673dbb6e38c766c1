package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// UpsertSnowflake records the display name for an external id.
// Last write wins; the directory is a cache, never authoritative.
func (s *Store) UpsertSnowflake(ctx context.Context, id int64, name string) error {
	const query = `
	INSERT INTO snowflakes (id, name)
	VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	if _, err := s.db.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("upsert snowflake: %w", err)
	}
	return nil
}

// GetSnowflake returns the cached name for an id, or ok=false if unseen.
func (s *Store) GetSnowflake(ctx context.Context, id int64) (points.Snowflake, bool, error) {
	var sf points.Snowflake
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM snowflakes WHERE id = ?`, id).
		Scan(&sf.ID, &sf.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return points.Snowflake{}, false, nil
	}
	if err != nil {
		return points.Snowflake{}, false, fmt.Errorf("get snowflake: %w", err)
	}
	return sf, true, nil
}
