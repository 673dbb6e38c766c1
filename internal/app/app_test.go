package app

import (
	"context"
	"testing"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

type fakeTracker struct {
	season   points.Season
	entries  []points.LeaderboardEntry
	channels []points.ChannelConfig
	scores   map[int64]int64
}

func (f *fakeTracker) SeasonLeaderboard(ctx context.Context, communityID int64) (points.Season, []points.LeaderboardEntry, error) {
	return f.season, f.entries, nil
}

func (f *fakeTracker) ChannelLeaderboard(ctx context.Context, channelID int64) ([]points.LeaderboardEntry, error) {
	return f.entries, nil
}

func (f *fakeTracker) SeasonChannels(ctx context.Context, communityID int64) (points.Season, []points.ChannelConfig, error) {
	return f.season, f.channels, nil
}

func (f *fakeTracker) UserSummary(ctx context.Context, communityID, userID int64) (points.Season, map[int64]int64, error) {
	return f.season, f.scores, nil
}

func TestHealthService(t *testing.T) {
	svc := HealthService{Version: "1.2.3"}
	result, err := svc.Handle(context.Background())
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Status != "ok" || result.Version != "1.2.3" {
		t.Errorf("result = %+v", result)
	}
}

func TestLeaderboardsService_Season(t *testing.T) {
	svc := &LeaderboardsService{Tracker: &fakeTracker{
		season:  points.Season{ID: 1, Name: "Season 1"},
		entries: []points.LeaderboardEntry{{UserID: 555, Score: 6}},
	}}

	result, err := svc.Season(context.Background(), 1)
	if err != nil {
		t.Fatalf("Season: %v", err)
	}
	if result.Season.Name != "Season 1" || len(result.Entries) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestSummaryService_NilScoresNormalized(t *testing.T) {
	svc := &SummaryService{Tracker: &fakeTracker{season: points.Season{ID: 1}}}

	result, err := svc.UserSummary(context.Background(), 1, 555)
	if err != nil {
		t.Fatalf("UserSummary: %v", err)
	}
	if result.Scores == nil {
		t.Error("Scores should never be nil (serializes as {} not null)")
	}
	if result.UserID != 555 {
		t.Errorf("UserID = %d, want 555", result.UserID)
	}
}

func TestChannelsService_NilChannelsNormalized(t *testing.T) {
	svc := &ChannelsService{Tracker: &fakeChannelTracker{}}

	result, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Channels == nil {
		t.Error("Channels should never be nil (serializes as [] not null)")
	}
}

type fakeChannelTracker struct {
	fakeTracker
}

func (f *fakeChannelTracker) ConfigureChannel(ctx context.Context, communityID, channelID, pointValue int64, channelName string) error {
	return nil
}

func (f *fakeChannelTracker) RemoveChannel(ctx context.Context, communityID, channelID int64) error {
	return nil
}

func (f *fakeChannelTracker) ClearChannelPoints(ctx context.Context, channelID int64) error {
	return nil
}
