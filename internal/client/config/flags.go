package config

import (
	"flag"
	"os"
	"time"

	"github.com/weathermood/weathermood/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the local database file
//	-m string   base URL of the mirror server
//	-k string   weather provider API key
//	-t int      weather cache TTL in minutes
//	-s int      periodic sync interval in minutes
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-k", "-t", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	fs.StringVar(&cfg.MirrorBaseURL, "m", cfg.MirrorBaseURL, "base URL of the mirror server")
	fs.StringVar(&cfg.WeatherAPIKey, "k", cfg.WeatherAPIKey, "weather provider API key")
	weatherTTL := fs.Int("t", int(cfg.WeatherTTL.Minutes()), "weather cache TTL (in minutes)")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Minutes()), "periodic sync interval (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.WeatherTTL = time.Duration(*weatherTTL) * time.Minute
	cfg.SyncInterval = time.Duration(*syncInterval) * time.Minute
}
