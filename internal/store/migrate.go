package store

import (
	"context"
	"fmt"
)

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1

// migrate runs database migrations.
func (s *Store) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS seasons (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		community_id INTEGER NOT NULL,
		name         TEXT NOT NULL,
		started_at   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_seasons_community ON seasons(community_id, id);

	CREATE TABLE IF NOT EXISTS channel_configs (
		season_id   INTEGER NOT NULL REFERENCES seasons(id),
		channel_id  INTEGER NOT NULL,
		point_value INTEGER NOT NULL,
		PRIMARY KEY (season_id, channel_id)
	);

	CREATE INDEX IF NOT EXISTS idx_channel_configs_channel ON channel_configs(channel_id);

	CREATE TABLE IF NOT EXISTS point_events (
		message_id INTEGER PRIMARY KEY,
		season_id  INTEGER NOT NULL REFERENCES seasons(id),
		channel_id INTEGER NOT NULL,
		user_id    INTEGER NOT NULL,
		sent_at    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_point_events_season_user ON point_events(season_id, user_id);
	CREATE INDEX IF NOT EXISTS idx_point_events_channel ON point_events(channel_id);

	CREATE TABLE IF NOT EXISTS adjustments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		channel_id INTEGER NOT NULL,
		user_id    INTEGER NOT NULL,
		adjustment INTEGER NOT NULL,
		note       TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_adjustments_channel ON adjustments(channel_id, id);

	CREATE TABLE IF NOT EXISTS snowflakes (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
