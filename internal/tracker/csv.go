package tracker

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pointskeeper/pointskeeper/internal/points"
	"github.com/pointskeeper/pointskeeper/internal/store"
)

// adjustmentHeader is the column layout of the adjustments CSV round-trip.
var adjustmentHeader = []string{"user_id", "user_name", "adjustment", "note"}

// pointsHeader is the column layout of the full points export.
var pointsHeader = []string{
	"message_id", "season_id", "season_name", "channel_id", "channel_name",
	"user_id", "user_name", "point_value", "sent_at",
}

// ExportAdjustments writes the channel's adjustments as CSV. When the set
// is empty a single illustrative row is written instead (blank user_id,
// the given sample name) so the file documents its own format for hand
// editing before re-import. Returns the exported adjustments.
func (t *Tracker) ExportAdjustments(ctx context.Context, channelID int64, w io.Writer, sampleName string) ([]points.Adjustment, error) {
	adjs, err := t.store.Adjustments(ctx, channelID)
	if err != nil {
		return nil, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(adjustmentHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	if len(adjs) == 0 {
		sample := []string{
			"",
			sampleName,
			"10",
			fmt.Sprintf("Adding 10 points for %s because reasons", sampleName),
		}
		if err := cw.Write(sample); err != nil {
			return nil, fmt.Errorf("write sample row: %w", err)
		}
	}

	for _, a := range adjs {
		name := ""
		if sf, ok, err := t.store.GetSnowflake(ctx, a.UserID); err != nil {
			return nil, err
		} else if ok {
			name = sf.Name
		}
		record := []string{
			strconv.FormatInt(a.UserID, 10),
			name,
			strconv.FormatInt(a.Adjustment, 10),
			a.Note,
		}
		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("write adjustment row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return adjs, nil
}

// ImportAdjustments replaces the channel's full adjustment set from CSV.
// A blank user_id column is resolved from user_name; any unresolvable row
// aborts the whole import before the existing set is touched, so a failed
// import never leaves the channel empty. Resolved users are also refreshed
// in the snowflake directory.
func (t *Tracker) ImportAdjustments(ctx context.Context, channelID int64, r io.Reader) error {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols, err := adjustmentColumns(header)
	if err != nil {
		return err
	}

	var adjs []points.Adjustment
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		adj, err := t.parseAdjustmentRow(ctx, channelID, record, cols)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		adjs = append(adjs, adj)
	}

	return t.store.ReplaceAdjustments(ctx, channelID, adjs)
}

// adjustmentColumnIndexes maps header names to positions so hand-edited
// files with reordered columns still import.
type adjustmentColumnIndexes struct {
	userID, userName, adjustment, note int
}

func adjustmentColumns(header []string) (adjustmentColumnIndexes, error) {
	cols := adjustmentColumnIndexes{userID: -1, userName: -1, adjustment: -1, note: -1}
	for i, name := range header {
		switch name {
		case "user_id":
			cols.userID = i
		case "user_name":
			cols.userName = i
		case "adjustment":
			cols.adjustment = i
		case "note":
			cols.note = i
		}
	}
	if cols.userID == -1 || cols.userName == -1 || cols.adjustment == -1 || cols.note == -1 {
		return cols, fmt.Errorf("header must contain columns %v, got %v", adjustmentHeader, header)
	}
	return cols, nil
}

func (t *Tracker) parseAdjustmentRow(ctx context.Context, channelID int64, record []string, cols adjustmentColumnIndexes) (points.Adjustment, error) {
	get := func(i int) string {
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	var userID int64
	if raw := get(cols.userID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return points.Adjustment{}, fmt.Errorf("parse user_id %q: %w", raw, err)
		}
		userID = id
	} else {
		name := get(cols.userName)
		if t.resolver == nil {
			return points.Adjustment{}, fmt.Errorf("resolve user %q: %w", name, ErrNoResolver)
		}
		id, displayName, err := t.resolver.ResolveUser(ctx, name)
		if err != nil {
			return points.Adjustment{}, fmt.Errorf("resolve user %q: %w", name, err)
		}
		if err := t.store.UpsertSnowflake(ctx, id, displayName); err != nil {
			return points.Adjustment{}, err
		}
		userID = id
	}

	amount, err := strconv.ParseInt(get(cols.adjustment), 10, 64)
	if err != nil {
		return points.Adjustment{}, fmt.Errorf("parse adjustment %q: %w", get(cols.adjustment), err)
	}

	return points.Adjustment{
		ChannelID:  channelID,
		UserID:     userID,
		Adjustment: amount,
		Note:       get(cols.note),
	}, nil
}

// ExportPoints writes every priced ledger event for the community as CSV
// with the canonical nine columns.
func (t *Tracker) ExportPoints(ctx context.Context, communityID int64, w io.Writer) error {
	rows, err := t.store.ExportPoints(ctx, communityID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(pointsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.MessageID, 10),
			strconv.FormatInt(row.SeasonID, 10),
			row.SeasonName,
			strconv.FormatInt(row.ChannelID, 10),
			row.ChannelName,
			strconv.FormatInt(row.UserID, 10),
			row.UserName,
			strconv.FormatInt(row.PointValue, 10),
			row.SentAt.UTC().Format(store.TimeFormat),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
