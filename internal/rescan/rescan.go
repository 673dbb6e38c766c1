// Package rescan replays bounded windows of channel history through the
// point-ingestion path. Replay is naturally idempotent because every event
// funnels into the ledger's unique-message-id insert.
package rescan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pointskeeper/pointskeeper/internal/chat"
)

// ErrRescanActive is returned when a rescan is requested for a channel
// that already has one in flight. Overlap is rejected, not queued;
// different channels may rescan concurrently.
var ErrRescanActive = errors.New("rescan already active for channel")

// DefaultHistoryLimit bounds how far back a rescan reaches.
const DefaultHistoryLimit = 1000

// DefaultProgressEvery is how many processed events separate status updates.
const DefaultProgressEvery = 100

// defaultStatusTimeout caps how long a single status delivery may block
// ingestion. Status is best-effort; a slow or failing sender never stalls
// the replay for long.
const defaultStatusTimeout = 2 * time.Second

// Handler processes one historical message, typically by recording a
// point. Handler errors are logged and the replay continues.
type Handler func(ctx context.Context, msg chat.Message) error

// Coordinator tracks in-flight rescans per channel and paces the replay.
type Coordinator struct {
	source        chat.HistorySource
	handler       Handler
	status        chat.StatusSender
	logger        *slog.Logger
	limit         int
	progressEvery int
	eventsPerSec  rate.Limit
	burst         int
	statusTimeout time.Duration

	mu    sync.Mutex
	tasks map[int64]*task

	wg sync.WaitGroup
}

type task struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStatusSender sets the best-effort progress reporter.
func WithStatusSender(s chat.StatusSender) Option {
	return func(c *Coordinator) { c.status = s }
}

// WithLogger sets the logger for the Coordinator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithHistoryLimit sets how many historical events a rescan consumes.
func WithHistoryLimit(limit int) Option {
	return func(c *Coordinator) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithProgressEvery sets the status-update interval in processed events.
func WithProgressEvery(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.progressEvery = n
		}
	}
}

// WithPacing sets the replay rate limit. The default of 50 events/s with
// a burst of 100 approximates "process 100, pause two seconds" without
// stalling short rescans.
func WithPacing(eventsPerSec float64, burst int) Option {
	return func(c *Coordinator) {
		if eventsPerSec > 0 && burst > 0 {
			c.eventsPerSec = rate.Limit(eventsPerSec)
			c.burst = burst
		}
	}
}

// New creates a Coordinator that replays history from source through
// handler.
func New(source chat.HistorySource, handler Handler, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:        source,
		handler:       handler,
		logger:        slog.Default(),
		limit:         DefaultHistoryLimit,
		progressEvery: DefaultProgressEvery,
		eventsPerSec:  rate.Limit(50),
		burst:         100,
		statusTimeout: defaultStatusTimeout,
		tasks:         make(map[int64]*task),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches a background rescan of the channel. Returns the task id,
// or ErrRescanActive if the channel already has a rescan in flight.
// Already-recorded events stay recorded if the task is cancelled midway.
func (c *Coordinator) Start(ctx context.Context, channelID int64) (uuid.UUID, error) {
	taskCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if _, exists := c.tasks[channelID]; exists {
		c.mu.Unlock()
		cancel()
		return uuid.Nil, fmt.Errorf("channel %d: %w", channelID, ErrRescanActive)
	}
	t := &task{id: uuid.New(), cancel: cancel}
	c.tasks[channelID] = t
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		defer func() {
			c.mu.Lock()
			delete(c.tasks, channelID)
			c.mu.Unlock()
		}()
		c.run(taskCtx, channelID, t.id)
	}()

	return t.id, nil
}

// Active reports whether a rescan is in flight for the channel.
func (c *Coordinator) Active(channelID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tasks[channelID]
	return ok
}

// Cancel stops the channel's in-flight rescan, if any. Events already
// replayed remain in the ledger.
func (c *Coordinator) Cancel(channelID int64) bool {
	c.mu.Lock()
	t, ok := c.tasks[channelID]
	c.mu.Unlock()
	if ok {
		t.cancel()
	}
	return ok
}

// Shutdown cancels all in-flight rescans and waits for them to finish or
// for ctx to expire.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	for _, t := range c.tasks {
		t.cancel()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) run(ctx context.Context, channelID int64, taskID uuid.UUID) {
	logger := c.logger.With("channel_id", channelID, "task_id", taskID.String())
	logger.Info("rescan started", "limit", c.limit)
	c.sendStatus(ctx, logger, "Scan task started. Watch this space...")

	events, errs, err := c.source.History(ctx, channelID, c.limit)
	if err != nil {
		logger.Error("failed to open history", "error", err)
		c.sendStatus(ctx, logger, "Scan failed to start.")
		return
	}

	limiter := rate.NewLimiter(c.eventsPerSec, c.burst)
	count := 0

	// Nil-channel pattern: nil each channel when closed, exit when both
	// are nil.
	eventsCh := events
	errsCh := errs

	for eventsCh != nil || errsCh != nil {
		select {
		case msg, ok := <-eventsCh:
			if !ok {
				eventsCh = nil
				continue
			}
			if err := limiter.Wait(ctx); err != nil {
				c.finish(logger, channelID, count, true)
				return
			}
			if err := c.handler(ctx, msg); err != nil {
				logger.Error("handler failed", "message_id", msg.ID, "error", err)
			}
			count++
			if count%c.progressEvery == 0 {
				c.sendStatus(ctx, logger, fmt.Sprintf("Scanned %d messages so far...", count))
			}
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("history source error", "error", err)
		case <-ctx.Done():
			c.finish(logger, channelID, count, true)
			return
		}
	}

	c.finish(logger, channelID, count, false)
}

func (c *Coordinator) finish(logger *slog.Logger, channelID int64, count int, cancelled bool) {
	if cancelled {
		logger.Info("rescan cancelled", "processed", count)
		// The task context is gone; give the final status its own
		// bounded context so cancellation still reports.
		ctx, cancel := context.WithTimeout(context.Background(), c.statusTimeout)
		defer cancel()
		c.sendStatusDirect(ctx, logger, fmt.Sprintf("Scan cancelled after %d messages.", count))
		return
	}
	logger.Info("rescan complete", "processed", count)
	ctx, cancel := context.WithTimeout(context.Background(), c.statusTimeout)
	defer cancel()
	c.sendStatusDirect(ctx, logger, fmt.Sprintf("Scan complete. Checked %d messages.", count))
}

// sendStatus delivers a progress update with a bounded deadline so
// reporting never blocks ingestion indefinitely.
func (c *Coordinator) sendStatus(ctx context.Context, logger *slog.Logger, content string) {
	sendCtx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()
	c.sendStatusDirect(sendCtx, logger, content)
}

func (c *Coordinator) sendStatusDirect(ctx context.Context, logger *slog.Logger, content string) {
	if c.status == nil {
		return
	}
	if err := c.status.Send(ctx, content); err != nil {
		logger.Warn("status update failed", "error", err)
	}
}
