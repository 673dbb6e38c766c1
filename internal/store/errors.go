package store

import "errors"

// Sentinel errors for the store package.
var (
	// ErrInvalidEvent is returned when a point event fails validation.
	ErrInvalidEvent = errors.New("invalid point event")

	// ErrInvalidAdjustment is returned when an adjustment fails validation.
	ErrInvalidAdjustment = errors.New("invalid adjustment")
)
