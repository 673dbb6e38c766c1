//go:build integration

package integration

import (
	"net/http"
	"testing"
)

// TestAuth_HealthNoAuthRequired tests that health endpoint doesn't require auth.
func TestAuth_HealthNoAuthRequired(t *testing.T) {
	app := NewTestApp(t, WithAuth("admin", "secret123"))

	resp, err := http.Get(app.URL() + "/api/v1/health")
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

// TestAuth_ProtectedEndpointRequiresAuth tests that data endpoints reject
// unauthenticated requests.
func TestAuth_ProtectedEndpointRequiresAuth(t *testing.T) {
	app := NewTestApp(t, WithAuth("admin", "secret123"))

	resp, err := http.Get(app.URL() + "/api/v1/leaderboard?community_id=1")
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.StatusCode)
	}
}

// TestAuth_ValidCredentials tests access with correct credentials.
func TestAuth_ValidCredentials(t *testing.T) {
	app := NewTestApp(t, WithAuth("admin", "secret123"))

	req, _ := http.NewRequest(http.MethodGet, app.URL()+"/api/v1/leaderboard?community_id=1", nil)
	req.SetBasicAuth("admin", "secret123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

// TestAuth_WrongPassword tests rejection of bad credentials.
func TestAuth_WrongPassword(t *testing.T) {
	app := NewTestApp(t, WithAuth("admin", "secret123"))

	req, _ := http.NewRequest(http.MethodGet, app.URL()+"/api/v1/leaderboard?community_id=1", nil)
	req.SetBasicAuth("admin", "wrong")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.StatusCode)
	}
}
