package app

import (
	"context"
	"io"
)

// ExportUsecase defines the CSV export use case.
type ExportUsecase interface {
	Points(ctx context.Context, communityID int64, w io.Writer) error
}

// ExportTracker defines tracker operations needed by ExportService.
type ExportTracker interface {
	ExportPoints(ctx context.Context, communityID int64, w io.Writer) error
}

// ExportService implements ExportUsecase.
type ExportService struct {
	Tracker ExportTracker
}

// Points streams the community's full points export as CSV.
func (s *ExportService) Points(ctx context.Context, communityID int64, w io.Writer) error {
	return s.Tracker.ExportPoints(ctx, communityID, w)
}
