package app

import (
	"context"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// SeasonChannelsResult lists the configured channels of a season.
type SeasonChannelsResult struct {
	Season   points.Season          `json:"season"`
	Channels []points.ChannelConfig `json:"channels"`
}

// ChannelsUsecase defines the channel administration use cases.
type ChannelsUsecase interface {
	List(ctx context.Context, communityID int64) (SeasonChannelsResult, error)
	Configure(ctx context.Context, communityID, channelID, pointValue int64, name string) error
	Remove(ctx context.Context, communityID, channelID int64) error
	ClearPoints(ctx context.Context, channelID int64) error
}

// ChannelTracker defines tracker operations needed by ChannelsService.
type ChannelTracker interface {
	SeasonChannels(ctx context.Context, communityID int64) (points.Season, []points.ChannelConfig, error)
	ConfigureChannel(ctx context.Context, communityID, channelID, pointValue int64, channelName string) error
	RemoveChannel(ctx context.Context, communityID, channelID int64) error
	ClearChannelPoints(ctx context.Context, channelID int64) error
}

// ChannelsService implements ChannelsUsecase.
type ChannelsService struct {
	Tracker ChannelTracker
}

// List returns the configured channels for the default season.
func (s *ChannelsService) List(ctx context.Context, communityID int64) (SeasonChannelsResult, error) {
	season, channels, err := s.Tracker.SeasonChannels(ctx, communityID)
	if err != nil {
		return SeasonChannelsResult{}, err
	}
	if channels == nil {
		channels = []points.ChannelConfig{}
	}
	return SeasonChannelsResult{Season: season, Channels: channels}, nil
}

// Configure sets a channel's point value; zero removes the config.
func (s *ChannelsService) Configure(ctx context.Context, communityID, channelID, pointValue int64, name string) error {
	return s.Tracker.ConfigureChannel(ctx, communityID, channelID, pointValue, name)
}

// Remove drops a channel's config from the default season.
func (s *ChannelsService) Remove(ctx context.Context, communityID, channelID int64) error {
	return s.Tracker.RemoveChannel(ctx, communityID, channelID)
}

// ClearPoints wipes a channel's accumulated ledger.
func (s *ChannelsService) ClearPoints(ctx context.Context, channelID int64) error {
	return s.Tracker.ClearChannelPoints(ctx, channelID)
}
