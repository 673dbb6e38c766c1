package store

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// PointExportRow is one denormalized row of the full points export,
// joining the ledger against seasons, current channel configs, and the
// snowflake directory.
type PointExportRow struct {
	MessageID   int64
	SeasonID    int64
	SeasonName  string
	ChannelID   int64
	ChannelName string
	UserID      int64
	UserName    string
	PointValue  int64
	SentAt      time.Time
}

// ExportPoints returns every priced ledger event for a community, oldest
// first. Events in channels no longer configured carry no current price
// and are excluded, matching the aggregation queries.
func (s *Store) ExportPoints(ctx context.Context, communityID int64) ([]PointExportRow, error) {
	const query = `
	SELECT p.message_id, p.season_id, se.name, p.channel_id, COALESCE(cs.name, ''),
	       p.user_id, COALESCE(us.name, ''), c.point_value, p.sent_at
	FROM point_events p
	JOIN seasons se ON se.id = p.season_id
	JOIN channel_configs c ON c.season_id = p.season_id AND c.channel_id = p.channel_id
	LEFT JOIN snowflakes cs ON cs.id = p.channel_id
	LEFT JOIN snowflakes us ON us.id = p.user_id
	WHERE se.community_id = ?
	ORDER BY p.sent_at ASC, p.message_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("query export: %w", err)
	}
	defer rows.Close()

	var out []PointExportRow
	for rows.Next() {
		var (
			row    PointExportRow
			sentAt string
		)
		if err := rows.Scan(
			&row.MessageID, &row.SeasonID, &row.SeasonName,
			&row.ChannelID, &row.ChannelName,
			&row.UserID, &row.UserName, &row.PointValue, &sentAt,
		); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		t, err := time.Parse(TimeFormat, sentAt)
		if err != nil {
			return nil, fmt.Errorf("parse sent_at %q: %w", sentAt, err)
		}
		row.SentAt = t
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// DebugDump returns the raw ledger as a header plus stringified rows, a
// diagnostic passthrough with no joins or pricing applied.
func (s *Store) DebugDump(ctx context.Context) (header []string, rows [][]string, err error) {
	header = []string{"message_id", "season_id", "channel_id", "user_id", "sent_at"}

	res, err := s.db.QueryContext(ctx, `
	SELECT message_id, season_id, channel_id, user_id, sent_at
	FROM point_events
	ORDER BY message_id ASC
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query dump: %w", err)
	}
	defer res.Close()

	for res.Next() {
		var (
			messageID, seasonID, channelID, userID int64
			sentAt                                 string
		)
		if err := res.Scan(&messageID, &seasonID, &channelID, &userID, &sentAt); err != nil {
			return nil, nil, fmt.Errorf("scan dump row: %w", err)
		}
		rows = append(rows, []string{
			strconv.FormatInt(messageID, 10),
			strconv.FormatInt(seasonID, 10),
			strconv.FormatInt(channelID, 10),
			strconv.FormatInt(userID, 10),
			sentAt,
		})
	}
	if err := res.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows error: %w", err)
	}
	return header, rows, nil
}
