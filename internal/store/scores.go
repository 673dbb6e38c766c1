package store

import (
	"context"
	"fmt"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// SeasonScores computes the season leaderboard. Each event is priced by
// joining against the current channel config, so repricing or removing a
// channel retroactively changes scores without touching the ledger.
// Ordered by score descending, ties broken by ascending user id.
func (s *Store) SeasonScores(ctx context.Context, seasonID int64) ([]points.LeaderboardEntry, error) {
	const query = `
	SELECT p.user_id, COALESCE(sf.name, ''), SUM(c.point_value) AS score
	FROM point_events p
	JOIN channel_configs c ON c.season_id = p.season_id AND c.channel_id = p.channel_id
	LEFT JOIN snowflakes sf ON sf.id = p.user_id
	WHERE p.season_id = ?
	GROUP BY p.user_id
	ORDER BY score DESC, p.user_id ASC
	`
	return s.queryScores(ctx, query, seasonID)
}

// ChannelScores computes the leaderboard for a single channel across all
// seasons it is configured in. Callers are expected to have verified the
// channel is configured; an unconfigured channel yields no rows.
func (s *Store) ChannelScores(ctx context.Context, channelID int64) ([]points.LeaderboardEntry, error) {
	const query = `
	SELECT p.user_id, COALESCE(sf.name, ''), SUM(c.point_value) AS score
	FROM point_events p
	JOIN channel_configs c ON c.season_id = p.season_id AND c.channel_id = p.channel_id
	LEFT JOIN snowflakes sf ON sf.id = p.user_id
	WHERE p.channel_id = ?
	GROUP BY p.user_id
	ORDER BY score DESC, p.user_id ASC
	`
	return s.queryScores(ctx, query, channelID)
}

// UserChannelScores returns one user's summed score per channel within a
// season, keyed by channel id.
func (s *Store) UserChannelScores(ctx context.Context, seasonID, userID int64) (map[int64]int64, error) {
	const query = `
	SELECT p.channel_id, SUM(c.point_value) AS score
	FROM point_events p
	JOIN channel_configs c ON c.season_id = p.season_id AND c.channel_id = p.channel_id
	WHERE p.season_id = ? AND p.user_id = ?
	GROUP BY p.channel_id
	`
	rows, err := s.db.QueryContext(ctx, query, seasonID, userID)
	if err != nil {
		return nil, fmt.Errorf("query user scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int64]int64)
	for rows.Next() {
		var channelID, score int64
		if err := rows.Scan(&channelID, &score); err != nil {
			return nil, fmt.Errorf("scan user score: %w", err)
		}
		scores[channelID] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return scores, nil
}

func (s *Store) queryScores(ctx context.Context, query string, args ...any) ([]points.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	entries := make([]points.LeaderboardEntry, 0, 16)
	for rows.Next() {
		var entry points.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.UserName, &entry.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}
