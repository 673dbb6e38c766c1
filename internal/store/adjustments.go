package store

import (
	"context"
	"fmt"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// Adjustments returns all adjustments for a channel in insertion order.
func (s *Store) Adjustments(ctx context.Context, channelID int64) ([]points.Adjustment, error) {
	const query = `
	SELECT channel_id, user_id, adjustment, note
	FROM adjustments
	WHERE channel_id = ?
	ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("query adjustments: %w", err)
	}
	defer rows.Close()

	var adjs []points.Adjustment
	for rows.Next() {
		var a points.Adjustment
		if err := rows.Scan(&a.ChannelID, &a.UserID, &a.Adjustment, &a.Note); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		adjs = append(adjs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return adjs, nil
}

// ReplaceAdjustments atomically replaces the full adjustment set for a
// channel. Either every given row lands and the old set is gone, or the
// transaction rolls back and the old set is untouched. Duplicate rows are
// legal and additive; there is no event-id idempotency here.
func (s *Store) ReplaceAdjustments(ctx context.Context, channelID int64, adjs []points.Adjustment) error {
	for i, a := range adjs {
		if a.UserID == 0 {
			return fmt.Errorf("%w: row %d: user_id is required", ErrInvalidAdjustment, i+1)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM adjustments WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("delete adjustments: %w", err)
	}

	const insert = `
	INSERT INTO adjustments (channel_id, user_id, adjustment, note)
	VALUES (?, ?, ?, ?)
	`
	for _, a := range adjs {
		if _, err := tx.ExecContext(ctx, insert, channelID, a.UserID, a.Adjustment, a.Note); err != nil {
			return fmt.Errorf("insert adjustment for user %d: %w", a.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
