// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for insight.
//
// Configuration lives in TOML at ~/.insight/config.toml, with built-in
// defaults and environment variable overrides applied on top.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/insight-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete insight configuration.
type Config struct {
	API   APIConfig   `toml:"api"`
	Audio AudioConfig `toml:"audio"`
	UI    UIConfig    `toml:"ui"`
}

// APIConfig points the client at the analytics assistant backend.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "http://analytics.internal:8000".
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds each request. Sends run the analytics query
	// synchronously, so this is generous by default.
	TimeoutSecs int `toml:"timeout_secs"`
}

// AudioConfig controls voice question capture.
type AudioConfig struct {
	// CaptureCmd is the external recorder invocation, e.g.
	// "arecord -f cd -t raw". Empty disables voice questions.
	CaptureCmd string `toml:"capture_cmd"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark", "light", or "auto".
	Theme string `toml:"theme"`
	// SidebarWidth is the conversation list width in columns.
	SidebarWidth int `toml:"sidebar_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://127.0.0.1:8000",
			TimeoutSecs: 60,
		},
		UI: UIConfig{
			Theme:        "dark",
			SidebarWidth: 32,
		},
	}
}

// Timeout returns the API timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the insight configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".insight"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// SessionDBPath returns the session database location.
func SessionDBPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}

// LogPath returns the log file location.
func LogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "insight.log"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, fills defaults, applies environment overrides,
// and validates. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for fields the file zeroed out.
func (c *Config) fillDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.SidebarWidth <= 0 {
		c.UI.SidebarWidth = d.UI.SidebarWidth
	}
}

// applyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - INSIGHT_API_URL: overrides api.base_url
//   - INSIGHT_API_TIMEOUT_SECS: overrides api.timeout_secs
//   - INSIGHT_CAPTURE_CMD: overrides audio.capture_cmd
//   - INSIGHT_THEME: overrides ui.theme
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INSIGHT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("INSIGHT_API_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("INSIGHT_CAPTURE_CMD"); v != "" {
		c.Audio.CaptureCmd = v
	}
	if v := os.Getenv("INSIGHT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}

	theme := strings.ToLower(c.UI.Theme)
	if theme != "dark" && theme != "light" && theme != "auto" {
		return fmt.Errorf("ui.theme must be dark, light, or auto, got %q", c.UI.Theme)
	}

	if c.UI.SidebarWidth < 16 || c.UI.SidebarWidth > 80 {
		return fmt.Errorf("ui.sidebar_width must be 16-80, got %d", c.UI.SidebarWidth)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to its default location atomically with
// owner-only permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# insight configuration file\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
