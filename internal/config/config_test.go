// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
}

func TestLoadFromPath_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "http://analytics.internal:8000"
timeout_secs = 120

[audio]
capture_cmd = "arecord -f cd -t raw"
`), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://analytics.internal:8000", cfg.API.BaseURL)
	assert.Equal(t, 120, cfg.API.TimeoutSecs)
	assert.Equal(t, "arecord -f cd -t raw", cfg.Audio.CaptureCmd)
	// Untouched sections keep defaults.
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "http://from-file:8000"
`), 0o600))

	t.Setenv("INSIGHT_API_URL", "http://from-env:9000")
	t.Setenv("INSIGHT_CAPTURE_CMD", "sox -d -t raw -")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:9000", cfg.API.BaseURL)
	assert.Equal(t, "sox -d -t raw -", cfg.Audio.CaptureCmd)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"relative url rejected", func(c *Config) { c.API.BaseURL = "analytics:8000" }, true},
		{"empty url rejected", func(c *Config) { c.API.BaseURL = "" }, true},
		{"unknown theme rejected", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"narrow sidebar rejected", func(c *Config) { c.UI.SidebarWidth = 4 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	in := Default()
	in.API.BaseURL = "http://saved:8000"
	in.Audio.CaptureCmd = "arecord"
	require.NoError(t, SaveToPath(in, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, in.API.BaseURL, out.API.BaseURL)
	assert.Equal(t, in.Audio.CaptureCmd, out.Audio.CaptureCmd)
}
