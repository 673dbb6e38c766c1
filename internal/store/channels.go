package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// ConfigureChannel upserts the point value for a channel in a season.
// The caller is responsible for translating a zero point value into
// RemoveChannel; storing zero is rejected to keep the "presence equals
// eligibility" invariant unambiguous.
func (s *Store) ConfigureChannel(ctx context.Context, cfg points.ChannelConfig) error {
	if cfg.PointValue == 0 {
		return errors.New("configure channel: zero point value means removal")
	}

	const query = `
	INSERT INTO channel_configs (season_id, channel_id, point_value)
	VALUES (?, ?, ?)
	ON CONFLICT(season_id, channel_id) DO UPDATE SET point_value = excluded.point_value
	`
	if _, err := s.db.ExecContext(ctx, query, cfg.SeasonID, cfg.ChannelID, cfg.PointValue); err != nil {
		return fmt.Errorf("configure channel: %w", err)
	}
	return nil
}

// RemoveChannel deletes the config row for a channel in a season.
// Existing point events are untouched; they simply stop contributing to
// aggregation until the channel is configured again.
func (s *Store) RemoveChannel(ctx context.Context, seasonID, channelID int64) error {
	const query = `DELETE FROM channel_configs WHERE season_id = ? AND channel_id = ?`
	if _, err := s.db.ExecContext(ctx, query, seasonID, channelID); err != nil {
		return fmt.Errorf("remove channel: %w", err)
	}
	return nil
}

// GetChannel returns the config for a channel in any season, or ok=false
// if the channel is not configured anywhere. Used as the not-found signal
// for channel leaderboards.
func (s *Store) GetChannel(ctx context.Context, channelID int64) (points.ChannelConfig, bool, error) {
	const query = `
	SELECT season_id, channel_id, point_value
	FROM channel_configs
	WHERE channel_id = ?
	ORDER BY season_id ASC
	LIMIT 1
	`
	var cfg points.ChannelConfig
	err := s.db.QueryRowContext(ctx, query, channelID).Scan(&cfg.SeasonID, &cfg.ChannelID, &cfg.PointValue)
	if errors.Is(err, sql.ErrNoRows) {
		return points.ChannelConfig{}, false, nil
	}
	if err != nil {
		return points.ChannelConfig{}, false, fmt.Errorf("get channel: %w", err)
	}
	return cfg, true, nil
}

// SeasonChannels returns all configured channels for a season, ordered by
// channel id.
func (s *Store) SeasonChannels(ctx context.Context, seasonID int64) ([]points.ChannelConfig, error) {
	const query = `
	SELECT season_id, channel_id, point_value
	FROM channel_configs
	WHERE season_id = ?
	ORDER BY channel_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("query season channels: %w", err)
	}
	defer rows.Close()

	var configs []points.ChannelConfig
	for rows.Next() {
		var cfg points.ChannelConfig
		if err := rows.Scan(&cfg.SeasonID, &cfg.ChannelID, &cfg.PointValue); err != nil {
			return nil, fmt.Errorf("scan channel config: %w", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return configs, nil
}
