package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pointskeeper/pointskeeper/internal/app"
)

func TestBasicAuth(t *testing.T) {
	srv := newTestServer(t,
		WithLeaderboardsUsecase(&stubLeaderboards{}),
		WithBasicAuth("admin", "hunter2"),
	)

	t.Run("no credentials", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/leaderboard?community_id=1")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
		if resp.Header.Get("WWW-Authenticate") == "" {
			t.Error("missing WWW-Authenticate header")
		}
	})

	t.Run("wrong credentials", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/leaderboard?community_id=1", nil)
		req.SetBasicAuth("admin", "wrong")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("correct credentials", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/leaderboard?community_id=1", nil)
		req.SetBasicAuth("admin", "hunter2")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("health bypasses auth", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/v1/health")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestWithBasicAuth_EmptyCredentialsDisabled(t *testing.T) {
	s := NewServer("127.0.0.1:0", app.HealthService{}, WithBasicAuth("", ""))
	if s.authEnabled {
		t.Error("empty credentials must not enable auth")
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	}
	for name, want := range headers {
		if got := resp.Header.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestConstantTimeEqualString(t *testing.T) {
	if !constantTimeEqualString("abc", "abc") {
		t.Error("equal strings should match")
	}
	if constantTimeEqualString("abc", "abd") {
		t.Error("different strings should not match")
	}
	if constantTimeEqualString("abc", "abcdef") {
		t.Error("different lengths should not match")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2, IdleTTL: time.Minute})
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Error("first request should pass")
	}
	if !rl.Allow("10.0.0.1") {
		t.Error("second request within burst should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request should be limited")
	}

	// Another IP has its own bucket.
	if !rl.Allow("10.0.0.2") {
		t.Error("different IP should pass")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, IdleTTL: time.Minute})
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:12345"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}
