// Package tracker coordinates the point ledger: season selection, channel
// configuration, ingestion, aggregation, and CSV round-trips.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/chat"
	"github.com/pointskeeper/pointskeeper/internal/points"
	"github.com/pointskeeper/pointskeeper/internal/store"
)

// ErrChannelNotConfigured distinguishes "never configured" from
// "configured with zero participants" on channel leaderboards.
var ErrChannelNotConfigured = errors.New("channel not configured")

// ErrNoResolver is returned by adjustment import when a row needs
// name-based resolution but no resolver was provided.
var ErrNoResolver = errors.New("no user resolver configured")

// Clock provides time for deterministic testing.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// DefaultClock is used when no clock is injected.
var DefaultClock Clock = realClock{}

// Tracker is the single entry point for all point operations. Live
// ingestion and rescan replay both converge on RecordPoint, so
// correctness under interleaving rests on the ledger's idempotent insert.
type Tracker struct {
	store    *store.Store
	resolver chat.UserResolver
	logger   *slog.Logger
	clock    Clock
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithResolver sets the display-name resolver used by adjustment import.
func WithResolver(r chat.UserResolver) Option {
	return func(t *Tracker) { t.resolver = r }
}

// WithLogger sets the logger for the Tracker.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock sets the clock for the Tracker (for testing).
func WithClock(clock Clock) Option {
	return func(t *Tracker) { t.clock = clock }
}

// New creates a new Tracker backed by the given store.
func New(st *store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  st,
		logger: slog.Default(),
		clock:  DefaultClock,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DefaultSeason returns the community's current season, creating
// "Season 1" on first use.
func (t *Tracker) DefaultSeason(ctx context.Context, communityID int64) (points.Season, error) {
	return t.store.DefaultSeason(ctx, communityID, t.clock.Now())
}

// ConfigureChannel sets the point value for a channel in the community's
// default season. A zero value removes the config row entirely, which is
// how "no longer tracked" is expressed; accumulated points are untouched
// (see ClearChannelPoints). A non-empty channelName refreshes the
// snowflake directory.
func (t *Tracker) ConfigureChannel(ctx context.Context, communityID, channelID, pointValue int64, channelName string) error {
	season, err := t.DefaultSeason(ctx, communityID)
	if err != nil {
		return err
	}

	if pointValue == 0 {
		return t.store.RemoveChannel(ctx, season.ID, channelID)
	}

	if err := t.store.ConfigureChannel(ctx, points.ChannelConfig{
		SeasonID:   season.ID,
		ChannelID:  channelID,
		PointValue: pointValue,
	}); err != nil {
		return err
	}

	if channelName != "" {
		if err := t.store.UpsertSnowflake(ctx, channelID, channelName); err != nil {
			return err
		}
	}

	t.logger.Info("channel configured",
		"season_id", season.ID,
		"channel_id", channelID,
		"point_value", pointValue,
	)
	return nil
}

// RemoveChannel removes the channel's config from the default season.
func (t *Tracker) RemoveChannel(ctx context.Context, communityID, channelID int64) error {
	season, err := t.DefaultSeason(ctx, communityID)
	if err != nil {
		return err
	}
	return t.store.RemoveChannel(ctx, season.ID, channelID)
}

// ClearChannelPoints wipes the accumulated ledger for a channel. Config
// removal and point clearing are deliberately separate operations.
func (t *Tracker) ClearChannelPoints(ctx context.Context, channelID int64) error {
	return t.store.ClearChannelPoints(ctx, channelID)
}

// SeasonChannels lists the configured channels for the default season.
func (t *Tracker) SeasonChannels(ctx context.Context, communityID int64) (points.Season, []points.ChannelConfig, error) {
	season, err := t.DefaultSeason(ctx, communityID)
	if err != nil {
		return points.Season{}, nil, err
	}
	channels, err := t.store.SeasonChannels(ctx, season.ID)
	if err != nil {
		return points.Season{}, nil, err
	}
	return season, channels, nil
}

// RecordPoint ingests a message into the ledger. communityID scopes the
// season lookup. Returns false with no error when the message's channel is
// not configured; eligibility is re-checked on every call. On acceptance
// the author's and channel's snowflake entries are refreshed.
func (t *Tracker) RecordPoint(ctx context.Context, communityID int64, msg chat.Message) (bool, error) {
	season, err := t.DefaultSeason(ctx, communityID)
	if err != nil {
		return false, err
	}

	accepted, err := t.store.RecordPoint(ctx, points.PointEvent{
		MessageID: msg.ID,
		SeasonID:  season.ID,
		ChannelID: msg.ChannelID,
		UserID:    msg.AuthorID,
		SentAt:    msg.CreatedAt,
	})
	if err != nil {
		return false, err
	}
	if !accepted {
		return false, nil
	}

	if msg.AuthorName != "" {
		if err := t.store.UpsertSnowflake(ctx, msg.AuthorID, msg.AuthorName); err != nil {
			return false, err
		}
	}
	if msg.ChannelName != "" {
		if err := t.store.UpsertSnowflake(ctx, msg.ChannelID, msg.ChannelName); err != nil {
			return false, err
		}
	}

	return true, nil
}

// RemovePoint deletes the ledger event for a deleted message. Removing a
// message that never earned a point is a silent no-op.
func (t *Tracker) RemovePoint(ctx context.Context, communityID int64, msg chat.Message) error {
	season, err := t.DefaultSeason(ctx, communityID)
	if err != nil {
		return err
	}
	return t.store.RemovePoint(ctx, points.PointEvent{
		MessageID: msg.ID,
		SeasonID:  season.ID,
		ChannelID: msg.ChannelID,
		UserID:    msg.AuthorID,
		SentAt:    msg.CreatedAt,
	})
}

// SeasonLeaderboard computes the default season's leaderboard, descending
// by score with ascending user id as the tie break. Adjustments are not
// included; they live only in the CSV round-trip.
func (t *Tracker) SeasonLeaderboard(ctx context.Context, communityID int64) (points.Season, []points.LeaderboardEntry, error) {
	season, err := t.DefaultSeason(ctx, communityID)
	if err != nil {
		return points.Season{}, nil, err
	}
	entries, err := t.store.SeasonScores(ctx, season.ID)
	if err != nil {
		return points.Season{}, nil, err
	}
	return season, entries, nil
}

// ChannelLeaderboard computes the leaderboard for one channel. Returns
// ErrChannelNotConfigured if the channel has no config in any season.
func (t *Tracker) ChannelLeaderboard(ctx context.Context, channelID int64) ([]points.LeaderboardEntry, error) {
	if _, ok, err := t.store.GetChannel(ctx, channelID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("channel %d: %w", channelID, ErrChannelNotConfigured)
	}
	return t.store.ChannelScores(ctx, channelID)
}

// UserSummary returns one user's per-channel score breakdown for the
// default season.
func (t *Tracker) UserSummary(ctx context.Context, communityID, userID int64) (points.Season, map[int64]int64, error) {
	season, err := t.DefaultSeason(ctx, communityID)
	if err != nil {
		return points.Season{}, nil, err
	}
	scores, err := t.store.UserChannelScores(ctx, season.ID, userID)
	if err != nil {
		return points.Season{}, nil, err
	}
	return season, scores, nil
}

// DebugDump returns the raw ledger as header plus rows.
func (t *Tracker) DebugDump(ctx context.Context) ([][]string, error) {
	header, rows, err := t.store.DebugDump(ctx)
	if err != nil {
		return nil, err
	}
	return append([][]string{header}, rows...), nil
}
