package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:3001" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("timezone = %q", cfg.Timezone)
	}
	if cfg.EventLog.HotDays != 30 {
		t.Fatalf("hot days = %d", cfg.EventLog.HotDays)
	}
	if cfg.FinalizeIntervalSeconds != 300 {
		t.Fatalf("finalize interval = %d", cfg.FinalizeIntervalSeconds)
	}
	if cfg.TLS.Enabled {
		t.Fatal("tls enabled by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcstatusd.toml")
	cfg := NewDefaultServerConfig()
	cfg.ListenAddr = "0.0.0.0:4000"
	cfg.Timezone = "Asia/Kolkata"
	cfg.EventLog.HotDays = 45
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if loaded.ListenAddr != "0.0.0.0:4000" {
		t.Fatalf("listen addr = %q", loaded.ListenAddr)
	}
	if loaded.Timezone != "Asia/Kolkata" {
		t.Fatalf("timezone = %q", loaded.Timezone)
	}
	if loaded.EventLog.HotDays != 45 {
		t.Fatalf("hot days = %d", loaded.EventLog.HotDays)
	}
}

func TestLoadRejectsInvalidTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcstatusd.toml")
	if err := os.WriteFile(path, []byte("timezone = \"Mars/Olympus\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadServerConfig(path); err == nil {
		t.Fatal("expected error for bogus timezone")
	}
}

func TestLoadRejectsShortHotWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcstatusd.toml")
	if err := os.WriteFile(path, []byte("[eventlog]\nhot_days = 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadServerConfig(path); err == nil {
		t.Fatal("expected error for hot window shorter than a week")
	}
}

func TestLoadRejectsTLSWithoutDomain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lcstatusd.toml")
	if err := os.WriteFile(path, []byte("[tls]\nenabled = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadServerConfig(path); err == nil {
		t.Fatal("expected error for tls without domain")
	}
}

func TestNormalizeFillsBlanks(t *testing.T) {
	cfg := &ServerConfig{ListenAddr: "  ", Timezone: "", EventLog: EventLogConfig{HotDays: -1}}
	cfg.Normalize()
	if cfg.ListenAddr != "127.0.0.1:3001" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("timezone = %q", cfg.Timezone)
	}
	if cfg.EventLog.HotDays != 30 {
		t.Fatalf("hot days = %d", cfg.EventLog.HotDays)
	}
	if cfg.DataDir == "" {
		t.Fatal("data dir left empty")
	}
}

func TestDataPaths(t *testing.T) {
	cfg := NewDefaultServerConfig()
	cfg.DataDir = "/tmp/lcdata"
	if got := cfg.StatePath(); got != filepath.Join("/tmp/lcdata", "status.json") {
		t.Fatalf("state path = %q", got)
	}
	if got := cfg.EventLogDir(); got != filepath.Join("/tmp/lcdata", "eventlog") {
		t.Fatalf("eventlog dir = %q", got)
	}
	if got := cfg.SnapshotsPath(); got != filepath.Join("/tmp/lcdata", "snapshots.json") {
		t.Fatalf("snapshots path = %q", got)
	}
}
