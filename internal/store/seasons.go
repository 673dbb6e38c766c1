package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// DefaultSeasonName is the name given to an auto-created first season.
const DefaultSeasonName = "Season 1"

// DefaultSeason returns the first season (by creation order) for the
// community, creating one named "Season 1" if none exists. The
// insert-if-absent and the select run in one transaction, so two
// near-simultaneous first calls observe the same season.
func (s *Store) DefaultSeason(ctx context.Context, communityID int64, now time.Time) (points.Season, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return points.Season{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const insert = `
	INSERT INTO seasons (community_id, name, started_at)
	SELECT ?, ?, ?
	WHERE NOT EXISTS (SELECT 1 FROM seasons WHERE community_id = ?)
	`
	if _, err := tx.ExecContext(ctx, insert,
		communityID, DefaultSeasonName, now.UTC().Format(TimeFormat), communityID,
	); err != nil {
		return points.Season{}, fmt.Errorf("create default season: %w", err)
	}

	const query = `
	SELECT id, community_id, name, started_at
	FROM seasons
	WHERE community_id = ?
	ORDER BY id ASC
	LIMIT 1
	`
	var (
		season    points.Season
		startedAt string
	)
	if err := tx.QueryRowContext(ctx, query, communityID).Scan(
		&season.ID, &season.CommunityID, &season.Name, &startedAt,
	); err != nil {
		return points.Season{}, fmt.Errorf("select default season: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return points.Season{}, fmt.Errorf("commit: %w", err)
	}

	t, err := time.Parse(TimeFormat, startedAt)
	if err != nil {
		return points.Season{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	season.StartedAt = t

	return season, nil
}

// Seasons returns all seasons for a community in creation order.
func (s *Store) Seasons(ctx context.Context, communityID int64) ([]points.Season, error) {
	const query = `
	SELECT id, community_id, name, started_at
	FROM seasons
	WHERE community_id = ?
	ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []points.Season
	for rows.Next() {
		var (
			season    points.Season
			startedAt string
		)
		if err := rows.Scan(&season.ID, &season.CommunityID, &season.Name, &startedAt); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		t, err := time.Parse(TimeFormat, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		season.StartedAt = t
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return seasons, nil
}
