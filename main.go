// insight TUI - a terminal front-end for the internal analytics assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/insight-tui/internal/api"
	"github.com/jeranaias/insight-tui/internal/audio"
	"github.com/jeranaias/insight-tui/internal/config"
	"github.com/jeranaias/insight-tui/internal/session"
	"github.com/jeranaias/insight-tui/internal/store"
	"github.com/jeranaias/insight-tui/internal/ui/app"
	"github.com/jeranaias/insight-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Route the standard logger to a file; stdout belongs to the TUI.
	closeLog, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	} else {
		defer closeLog()
	}
	log.Printf("insight %s (%s) starting", Version, GitCommit)

	client := api.NewClient(cfg.API.BaseURL).WithTimeout(cfg.Timeout())

	// Session persistence. A broken store degrades to in-memory so a bad
	// database file never blocks sign-in.
	var sessStore session.Store
	if dbPath, err := config.SessionDBPath(); err == nil {
		if s, err := store.Open(dbPath); err == nil {
			defer s.Close()
			sessStore = s
		} else {
			log.Printf("session store unavailable: %v", err)
		}
	}
	if sessStore == nil {
		sessStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(client, sessStore)

	recorder := audio.NewRecorder(captureDevice(cfg))
	theme := styles.New(cfg.UI.Theme, termenv.ColorProfile())

	m := app.New(cfg, theme, client, sessions, recorder)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running insight: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging points the standard logger at ~/.insight/insight.log.
func setupLogging() (func(), error) {
	path, err := config.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	return func() { f.Close() }, nil
}

// captureDevice builds the audio device from the configured capture command.
// No command means voice questions are simply unavailable.
func captureDevice(cfg *config.Config) audio.Device {
	fields := strings.Fields(cfg.Audio.CaptureCmd)
	if len(fields) == 0 {
		return nil
	}
	return audio.NewCommandDevice(fields[0], fields[1:]...)
}
