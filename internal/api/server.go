// Package api provides the HTTP read/admin surface for Pointskeeper.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/app"
)

// Server represents the HTTP API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux

	// Use case dependencies
	health       app.HealthUsecase
	leaderboards app.LeaderboardsUsecase
	summary      app.SummaryUsecase
	channels     app.ChannelsUsecase
	export       app.ExportUsecase

	// Rate limiting (enabled for LAN mode)
	limiter *RateLimiter

	// Auth configuration
	authEnabled  bool
	authUsername string
	authPassword string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLeaderboardsUsecase sets the leaderboards use case.
func WithLeaderboardsUsecase(u app.LeaderboardsUsecase) ServerOption {
	return func(s *Server) { s.leaderboards = u }
}

// WithSummaryUsecase sets the user summary use case.
func WithSummaryUsecase(u app.SummaryUsecase) ServerOption {
	return func(s *Server) { s.summary = u }
}

// WithChannelsUsecase sets the channel administration use case.
func WithChannelsUsecase(u app.ChannelsUsecase) ServerOption {
	return func(s *Server) { s.channels = u }
}

// WithExportUsecase sets the CSV export use case.
func WithExportUsecase(u app.ExportUsecase) ServerOption {
	return func(s *Server) { s.export = u }
}

// WithRateLimiter enables IP-based request rate limiting.
func WithRateLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) { s.limiter = rl }
}

// WithBasicAuth enables HTTP Basic Auth.
func WithBasicAuth(username, password string) ServerOption {
	return func(s *Server) {
		if username != "" && password != "" {
			s.authEnabled = true
			s.authUsername = username
			s.authPassword = password
		}
	}
}

// NewServer creates a new API server with the given dependencies.
func NewServer(addr string, health app.HealthUsecase, opts ...ServerOption) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:    mux,
		health: health,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()

	var handler http.Handler = mux
	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}
	handler = securityHeadersMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// wrapAuth wraps a handler with auth middleware if auth is enabled.
func (s *Server) wrapAuth(h http.HandlerFunc) http.Handler {
	if !s.authEnabled {
		return h
	}
	return basicAuthMiddleware(s.authUsername, s.authPassword)(h)
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	// Health endpoint (no auth required)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	if s.leaderboards != nil {
		s.mux.Handle("GET /api/v1/leaderboard", s.wrapAuth(s.handleSeasonLeaderboard))
		s.mux.Handle("GET /api/v1/channels/{id}/leaderboard", s.wrapAuth(s.handleChannelLeaderboard))
	}
	if s.summary != nil {
		s.mux.Handle("GET /api/v1/users/{id}/summary", s.wrapAuth(s.handleUserSummary))
	}
	if s.channels != nil {
		s.mux.Handle("GET /api/v1/channels", s.wrapAuth(s.handleListChannels))
		s.mux.Handle("PUT /api/v1/channels/{id}", s.wrapAuth(s.handleConfigureChannel))
		s.mux.Handle("DELETE /api/v1/channels/{id}", s.wrapAuth(s.handleRemoveChannel))
		s.mux.Handle("DELETE /api/v1/channels/{id}/points", s.wrapAuth(s.handleClearChannelPoints))
	}
	if s.export != nil {
		s.mux.Handle("GET /api/v1/export/points", s.wrapAuth(s.handleExportPoints))
	}
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, err := s.health.Handle(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's root handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
