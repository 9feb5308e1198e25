// Package config loads and saves the YAML configuration file used by
// the command-line tool.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes one ICS subscription feed.
type FeedConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// APIConfig holds the connection details for the availability service.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Config is the top-level configuration.
type Config struct {
	// API is the availability service this tool talks to.
	API APIConfig `yaml:"api"`

	// Timezone is the IANA zone custom availability slots are entered
	// in (e.g. "Europe/Berlin"). Empty means UTC.
	Timezone string `yaml:"timezone"`

	// WatchCron is the cron schedule the watch subcommand fires
	// refresh triggers on.
	WatchCron string `yaml:"watch_cron"`

	// Feeds are read-only ICS subscriptions offered alongside the
	// OAuth-backed calendar platforms.
	Feeds []FeedConfig `yaml:"feeds"`
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:3000/api",
		},
		Timezone:  "UTC",
		WatchCron: "*/15 * * * *",
		Feeds:     []FeedConfig{},
	}
}

// Normalize fills zero values with defaults so older or hand-edited
// files keep working.
func (c *Config) Normalize() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://127.0.0.1:3000/api"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.WatchCron == "" {
		c.WatchCron = "*/15 * * * *"
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
}

// Load reads the configuration at path. A missing file is first-run:
// a default config is written with 0600 perms and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename,
// ending with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".availsync-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
