package app

import (
	"context"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// SeasonLeaderboardResult bundles a season with its computed standings.
type SeasonLeaderboardResult struct {
	Season  points.Season             `json:"season"`
	Entries []points.LeaderboardEntry `json:"entries"`
}

// LeaderboardsUsecase defines the leaderboard query use cases.
type LeaderboardsUsecase interface {
	Season(ctx context.Context, communityID int64) (SeasonLeaderboardResult, error)
	Channel(ctx context.Context, channelID int64) ([]points.LeaderboardEntry, error)
}

// LeaderboardTracker defines tracker operations needed by LeaderboardsService.
type LeaderboardTracker interface {
	SeasonLeaderboard(ctx context.Context, communityID int64) (points.Season, []points.LeaderboardEntry, error)
	ChannelLeaderboard(ctx context.Context, channelID int64) ([]points.LeaderboardEntry, error)
}

// LeaderboardsService implements LeaderboardsUsecase.
type LeaderboardsService struct {
	Tracker LeaderboardTracker
}

// Season computes the default-season leaderboard for a community.
func (s *LeaderboardsService) Season(ctx context.Context, communityID int64) (SeasonLeaderboardResult, error) {
	season, entries, err := s.Tracker.SeasonLeaderboard(ctx, communityID)
	if err != nil {
		return SeasonLeaderboardResult{}, err
	}
	return SeasonLeaderboardResult{Season: season, Entries: entries}, nil
}

// Channel computes the leaderboard for one channel.
func (s *LeaderboardsService) Channel(ctx context.Context, channelID int64) ([]points.LeaderboardEntry, error) {
	return s.Tracker.ChannelLeaderboard(ctx, channelID)
}
