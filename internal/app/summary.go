package app

import (
	"context"

	"github.com/pointskeeper/pointskeeper/internal/points"
)

// UserSummaryResult is one user's per-channel score breakdown.
type UserSummaryResult struct {
	Season points.Season   `json:"season"`
	UserID int64           `json:"user_id"`
	Scores map[int64]int64 `json:"scores"`
}

// SummaryUsecase defines the user summary use case.
type SummaryUsecase interface {
	UserSummary(ctx context.Context, communityID, userID int64) (UserSummaryResult, error)
}

// SummaryTracker defines tracker operations needed by SummaryService.
type SummaryTracker interface {
	UserSummary(ctx context.Context, communityID, userID int64) (points.Season, map[int64]int64, error)
}

// SummaryService implements SummaryUsecase.
type SummaryService struct {
	Tracker SummaryTracker
}

// UserSummary returns the per-channel breakdown for one user.
func (s *SummaryService) UserSummary(ctx context.Context, communityID, userID int64) (UserSummaryResult, error) {
	season, scores, err := s.Tracker.UserSummary(ctx, communityID, userID)
	if err != nil {
		return UserSummaryResult{}, err
	}
	if scores == nil {
		scores = map[int64]int64{}
	}
	return UserSummaryResult{Season: season, UserID: userID, Scores: scores}, nil
}
