// Package chat defines the boundary to the external chat platform.
// The rest of the system depends only on these narrow types, never on a
// platform SDK's full message shape.
package chat

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned by a UserResolver when a display name cannot
// be resolved to an id.
var ErrUserNotFound = errors.New("user not found")

// Message carries exactly the fields the ledger needs from a platform
// message. Display names are optional; empty names skip the snowflake
// refresh.
type Message struct {
	ID          int64
	AuthorID    int64
	AuthorName  string
	ChannelID   int64
	ChannelName string
	CreatedAt   time.Time
}

// UserResolver resolves a human-entered display name to a stable user id.
type UserResolver interface {
	// ResolveUser returns the id and canonical display name for name.
	// Returns an error wrapping ErrUserNotFound if no user matches.
	ResolveUser(ctx context.Context, name string) (id int64, displayName string, err error)
}

// HistorySource produces historical messages for a channel, most recent
// first, up to limit. Implementations should close both channels when ctx
// is cancelled, on fatal error, or when the history is exhausted.
type HistorySource interface {
	History(ctx context.Context, channelID int64, limit int) (<-chan Message, <-chan error, error)
}

// StatusSender delivers best-effort textual status updates (for example
// rescan progress). Delivery failure must never abort the caller's work.
type StatusSender interface {
	Send(ctx context.Context, content string) error
}
