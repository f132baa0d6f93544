package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/weathermood/weathermood/internal/flagx"
	"github.com/weathermood/weathermood/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "15m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabasePath   string         `json:"database_path"`
	MirrorBaseURL  string         `json:"mirror_base_url"`
	WeatherBaseURL string         `json:"weather_base_url"`
	WeatherAPIKey  string         `json:"weather_api_key"`
	WeatherTTL     timex.Duration `json:"weather_ttl"`
	FetchTimeout   timex.Duration `json:"fetch_timeout"`
	SyncInterval   timex.Duration `json:"sync_interval"`
	SyncTolerance  timex.Duration `json:"sync_tolerance"`
	JobTimeout     timex.Duration `json:"job_timeout"`
	MinBackoff     timex.Duration `json:"min_backoff"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when absent, nothing is loaded.
// Only fields actually present in the JSON override the defaults.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.MirrorBaseURL != "" {
		cfg.MirrorBaseURL = jc.MirrorBaseURL
	}
	if jc.WeatherBaseURL != "" {
		cfg.WeatherBaseURL = jc.WeatherBaseURL
	}
	if jc.WeatherAPIKey != "" {
		cfg.WeatherAPIKey = jc.WeatherAPIKey
	}
	if jc.WeatherTTL.Duration > 0 {
		cfg.WeatherTTL = time.Duration(jc.WeatherTTL.Duration)
	}
	if jc.FetchTimeout.Duration > 0 {
		cfg.FetchTimeout = time.Duration(jc.FetchTimeout.Duration)
	}
	if jc.SyncInterval.Duration > 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.SyncTolerance.Duration > 0 {
		cfg.SyncTolerance = time.Duration(jc.SyncTolerance.Duration)
	}
	if jc.JobTimeout.Duration > 0 {
		cfg.JobTimeout = time.Duration(jc.JobTimeout.Duration)
	}
	if jc.MinBackoff.Duration > 0 {
		cfg.MinBackoff = time.Duration(jc.MinBackoff.Duration)
	}
}
