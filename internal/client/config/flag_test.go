package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-d", "/tmp/wm.db", "-m", "http://mirror:9090", "-k", "abc123", "-t", "10", "-s", "5"},
			expectPanic: false,
			expected: &Config{
				DatabasePath:  "/tmp/wm.db",
				MirrorBaseURL: "http://mirror:9090",
				WeatherAPIKey: "abc123",
				WeatherTTL:    10 * time.Minute,
				SyncInterval:  5 * time.Minute,
			}},
		{name: "Test2 incorrect ttl",
			args:        []string{"cmd", "-t", "abc"},
			expectPanic: true,
			expected:    &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
