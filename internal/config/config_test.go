package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFrom_Missing(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigFrom_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("corrupt config should not be fatal: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigFrom_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"schema_version": 99, "port": 9000}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Port != DefaultConfig().Port {
		t.Errorf("port = %d, want default (unknown schema ignored)", cfg.Port)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	want := DefaultConfig()
	want.Port = 9090
	want.LanEnabled = true
	want.RescanLimit = 500

	if err := SaveConfigTo(want, path); err != nil {
		t.Fatalf("SaveConfigTo: %v", err)
	}
	got, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadConfigFrom_NormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := fmt.Sprintf(`{"schema_version": %d, "port": -1, "rescan_limit": 0}`, CurrentSchemaVersion)
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Port != DefaultConfig().Port {
		t.Errorf("port = %d, want default", cfg.Port)
	}
	if cfg.RescanLimit != DefaultConfig().RescanLimit {
		t.Errorf("rescan_limit = %d, want default", cfg.RescanLimit)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9999")
	t.Setenv(EnvLanEnabled, "yes")
	t.Setenv(EnvDBPath, "/tmp/custom.sqlite")
	t.Setenv(EnvRescanLimit, "250")

	cfg := ApplyEnvOverrides(DefaultConfig())
	if cfg.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Port)
	}
	if !cfg.LanEnabled {
		t.Error("lan_enabled should be true")
	}
	if cfg.DBPath != "/tmp/custom.sqlite" {
		t.Errorf("db_path = %q", cfg.DBPath)
	}
	if cfg.RescanLimit != 250 {
		t.Errorf("rescan_limit = %d, want 250", cfg.RescanLimit)
	}
}

func TestApplyEnvOverrides_IgnoresInvalid(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")
	t.Setenv(EnvRescanLimit, "-5")

	cfg := ApplyEnvOverrides(DefaultConfig())
	if cfg.Port != DefaultConfig().Port {
		t.Errorf("port = %d, want default", cfg.Port)
	}
	if cfg.RescanLimit != DefaultConfig().RescanLimit {
		t.Errorf("rescan_limit = %d, want default", cfg.RescanLimit)
	}
}

func TestParseBool(t *testing.T) {
	trues := []string{"true", "TRUE", "1", "yes", "on", " On "}
	for _, s := range trues {
		if !parseBool(s) {
			t.Errorf("parseBool(%q) = false, want true", s)
		}
	}
	falses := []string{"", "false", "0", "no", "off", "maybe"}
	for _, s := range falses {
		if parseBool(s) {
			t.Errorf("parseBool(%q) = true, want false", s)
		}
	}
}
