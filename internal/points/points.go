// Package points provides the shared domain model for Pointskeeper.
// This package is used by store, tracker, rescan, app, and api packages.
package points

import "time"

// Season is a bounded scoring epoch within a community. Exactly one season
// per community (the first by creation order) is treated as current.
type Season struct {
	ID          int64     `json:"id"`
	CommunityID int64     `json:"community_id"`
	Name        string    `json:"name"`
	StartedAt   time.Time `json:"started_at"`
}

// ChannelConfig marks a channel as point-eligible for a season.
// Presence of the row is the eligibility flag; a configured value of zero
// is expressed as removal of the row, never stored.
type ChannelConfig struct {
	SeasonID   int64 `json:"season_id"`
	ChannelID  int64 `json:"channel_id"`
	PointValue int64 `json:"point_value"`
}

// PointEvent is one qualifying message in the ledger. The point value is
// not stored here; it is resolved from the channel config at aggregation
// time, so repricing a channel retroactively reprices past events.
type PointEvent struct {
	MessageID int64     `json:"message_id"`
	SeasonID  int64     `json:"season_id"`
	ChannelID int64     `json:"channel_id"`
	UserID    int64     `json:"user_id"`
	SentAt    time.Time `json:"sent_at"`
}

// Adjustment is a manual point correction for a channel. Adjustments are
// replaced wholesale per channel on import and never feed into computed
// leaderboards.
type Adjustment struct {
	ChannelID  int64  `json:"channel_id"`
	UserID     int64  `json:"user_id"`
	Adjustment int64  `json:"adjustment"`
	Note       string `json:"note"`
}

// Snowflake caches the display name for an external identifier (user or
// channel). Purely a cache, last write wins; never authoritative.
type Snowflake struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LeaderboardEntry is one row of a computed leaderboard.
// UserName is filled from the snowflake directory when known.
type LeaderboardEntry struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Score    int64  `json:"score"`
}
