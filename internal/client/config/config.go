// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the WeatherMood client.
//
// Fields:
//   - DatabasePath: path to the local SQLite database file.
//   - MirrorBaseURL: base URL of the remote mirror server.
//   - WeatherBaseURL / WeatherAPIKey: weather provider endpoint and key.
//   - WeatherTTL: freshness window for cached weather snapshots.
//   - FetchTimeout: per-request timeout for provider and mirror calls.
//   - SyncInterval / SyncTolerance: periodic sync cadence and jitter window.
//   - JobTimeout: deadline for one scheduled sync job.
//   - MinBackoff: floor for the sync retry backoff.
type Config struct {
	DatabasePath   string
	MirrorBaseURL  string
	WeatherBaseURL string
	WeatherAPIKey  string
	WeatherTTL     time.Duration
	FetchTimeout   time.Duration
	SyncInterval   time.Duration
	SyncTolerance  time.Duration
	JobTimeout     time.Duration
	MinBackoff     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "weathermood.db"
	c.MirrorBaseURL = "http://127.0.0.1:8080"
	c.WeatherBaseURL = "https://api.openweathermap.org"
	c.WeatherAPIKey = ""
	c.WeatherTTL = 30 * time.Minute
	c.FetchTimeout = 10 * time.Second
	c.SyncInterval = 15 * time.Minute
	c.SyncTolerance = 5 * time.Minute
	c.JobTimeout = 2 * time.Minute
	c.MinBackoff = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
