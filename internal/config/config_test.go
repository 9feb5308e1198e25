package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFirstRunWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "availsync.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.WatchCron != "*/15 * * * *" {
		t.Errorf("WatchCron = %q", cfg.WatchCron)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availsync.yaml")
	body := "timezone: Europe/Berlin\nfeeds:\n  - id: band\n    url: https://example.com/band.ics\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.API.BaseURL == "" || cfg.WatchCron == "" {
		t.Errorf("defaults not filled: %+v", cfg)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].ID != "band" {
		t.Errorf("Feeds = %+v", cfg.Feeds)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "availsync.yaml")

	cfg := Default()
	cfg.API.Token = "secret"
	cfg.Timezone = "America/New_York"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if loaded.API.Token != "secret" || loaded.Timezone != "America/New_York" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}
