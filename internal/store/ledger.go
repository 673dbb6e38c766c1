package store

import (
	"context"
	"fmt"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// RecordPoint appends a point event to the ledger. Eligibility is
// re-checked on every call: if no channel config exists for the event's
// (season, channel) pair, nothing is written and accepted is false.
//
// Inserts are keyed on message_id with ON CONFLICT DO NOTHING, so
// re-ingesting the same message (bot restart, rescan overlapping live
// traffic) never double-counts. accepted is true for both a fresh insert
// and an already-present id.
func (s *Store) RecordPoint(ctx context.Context, ev points.PointEvent) (accepted bool, err error) {
	if err := validatePointEvent(ev); err != nil {
		return false, err
	}

	const eligible = `
	SELECT EXISTS (
		SELECT 1 FROM channel_configs WHERE season_id = ? AND channel_id = ?
	)
	`
	var ok bool
	if err := s.db.QueryRowContext(ctx, eligible, ev.SeasonID, ev.ChannelID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check eligibility: %w", err)
	}
	if !ok {
		return false, nil
	}

	const insert = `
	INSERT INTO point_events (message_id, season_id, channel_id, user_id, sent_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(message_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, insert,
		ev.MessageID, ev.SeasonID, ev.ChannelID, ev.UserID, ev.SentAt.UTC().Format(TimeFormat),
	); err != nil {
		return false, fmt.Errorf("record point: %w", err)
	}

	return true, nil
}

// RemovePoint deletes the matching point event. Removing an event that was
// never recorded (message deleted in an ineligible channel) is a silent
// no-op.
func (s *Store) RemovePoint(ctx context.Context, ev points.PointEvent) error {
	const query = `
	DELETE FROM point_events
	WHERE message_id = ? AND season_id = ? AND channel_id = ? AND user_id = ?
	`
	if _, err := s.db.ExecContext(ctx, query, ev.MessageID, ev.SeasonID, ev.ChannelID, ev.UserID); err != nil {
		return fmt.Errorf("remove point: %w", err)
	}
	return nil
}

// ClearChannelPoints deletes all point events for a channel across all
// seasons. Distinct from RemoveChannel: removing the config stops future
// earning, clearing wipes the accumulated ledger.
func (s *Store) ClearChannelPoints(ctx context.Context, channelID int64) error {
	const query = `DELETE FROM point_events WHERE channel_id = ?`
	if _, err := s.db.ExecContext(ctx, query, channelID); err != nil {
		return fmt.Errorf("clear channel points: %w", err)
	}
	return nil
}

// CountPoints returns the total number of ledger events.
func (s *Store) CountPoints(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM point_events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return count, nil
}

// validatePointEvent checks that required fields are set.
func validatePointEvent(ev points.PointEvent) error {
	if ev.MessageID == 0 {
		return fmt.Errorf("%w: message_id is required", ErrInvalidEvent)
	}
	if ev.SeasonID == 0 {
		return fmt.Errorf("%w: season_id is required", ErrInvalidEvent)
	}
	if ev.ChannelID == 0 {
		return fmt.Errorf("%w: channel_id is required", ErrInvalidEvent)
	}
	if ev.UserID == 0 {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	}
	if ev.SentAt.IsZero() {
		return fmt.Errorf("%w: sent_at is required", ErrInvalidEvent)
	}
	return nil
}
