//go:build integration

// Package integration provides end-to-end tests for the Pointskeeper API,
// running a real store and tracker behind an httptest server.
package integration

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/api"
	"github.com/pointskeeper/pointskeeper/internal/app"
	"github.com/pointskeeper/pointskeeper/internal/chat"
	"github.com/pointskeeper/pointskeeper/internal/store"
	"github.com/pointskeeper/pointskeeper/internal/tracker"
)

// TestApp holds all dependencies for integration tests.
type TestApp struct {
	Server  *httptest.Server
	Store   *store.Store
	Tracker *tracker.Tracker
}

// NewTestApp wires a full application stack on a temp database.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()

	cfg := &testAppConfig{
		username: "admin",
		password: "password",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	trk := tracker.New(st)

	serverOpts := []api.ServerOption{
		api.WithLeaderboardsUsecase(&app.LeaderboardsService{Tracker: trk}),
		api.WithSummaryUsecase(&app.SummaryService{Tracker: trk}),
		api.WithChannelsUsecase(&app.ChannelsService{Tracker: trk}),
		api.WithExportUsecase(&app.ExportService{Tracker: trk}),
	}
	if cfg.authEnabled {
		serverOpts = append(serverOpts, api.WithBasicAuth(cfg.username, cfg.password))
	}

	server := api.NewServer("127.0.0.1:0", app.HealthService{Version: "test"}, serverOpts...)
	ts := httptest.NewServer(server.Handler())

	t.Cleanup(func() {
		ts.Close()
		st.Close()
	})

	return &TestApp{
		Server:  ts,
		Store:   st,
		Tracker: trk,
	}
}

// URL returns the base URL of the test server.
func (a *TestApp) URL() string {
	return a.Server.URL
}

// RecordTestMessage configures the channel if needed and records a message.
func (a *TestApp) RecordTestMessage(t *testing.T, communityID, channelID, userID, messageID int64) {
	t.Helper()

	msg := chat.Message{
		ID:        messageID,
		AuthorID:  userID,
		ChannelID: channelID,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, int(messageID), time.UTC),
	}
	accepted, err := a.Tracker.RecordPoint(context.Background(), communityID, msg)
	if err != nil {
		t.Fatalf("failed to record message: %v", err)
	}
	if !accepted {
		t.Fatalf("message %d not accepted (channel unconfigured?)", messageID)
	}
}

// testAppConfig holds configuration for a test app.
type testAppConfig struct {
	authEnabled bool
	username    string
	password    string
}

// TestAppOption configures a test app.
type TestAppOption func(*testAppConfig)

// WithAuth enables authentication for the test app.
func WithAuth(username, password string) TestAppOption {
	return func(cfg *testAppConfig) {
		cfg.authEnabled = true
		cfg.username = username
		cfg.password = password
	}
}
