// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the insight TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all styled components for the application. It adapts to the
// terminal's color capability on construction.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App    lipgloss.Style
	Header lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarHeading   lipgloss.Style
	SidebarItem      lipgloss.Style
	SidebarSelected  lipgloss.Style
	SidebarEmpty     lipgloss.Style
	SidebarSeparator lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	QuestionBubble  lipgloss.Style
	AnswerBubble    lipgloss.Style
	WaitingBubble   lipgloss.Style
	TableHeader     lipgloss.Style
	TableCell       lipgloss.Style
	FeedbackActive  lipgloss.Style
	FeedbackMuted   lipgloss.Style
	MessageMeta     lipgloss.Style

	// ==========================================================================
	// COMPOSER STYLES
	// ==========================================================================

	Composer     lipgloss.Style
	Recording    lipgloss.Style
	Disclaimer   lipgloss.Style

	// ==========================================================================
	// FORM AND STATUS STYLES
	// ==========================================================================

	FormLabel   lipgloss.Style
	FormBox     lipgloss.Style
	ErrorText   lipgloss.Style
	StatusBar   lipgloss.Style
	ShortcutKey lipgloss.Style
	EmptyState  lipgloss.Style
}

// Palette anchors for the two theme variants.
var (
	darkAccent  = lipgloss.Color("69")
	darkSubtle  = lipgloss.Color("241")
	darkError   = lipgloss.Color("203")
	lightAccent = lipgloss.Color("26")
	lightSubtle = lipgloss.Color("245")
	lightError  = lipgloss.Color("160")
)

// New builds a theme for the given variant. "auto" follows the terminal
// background.
func New(variant string, profile termenv.Profile) *Theme {
	isDark := variant == "dark" || (variant == "auto" && termenv.HasDarkBackground())

	accent, subtle, errCol := lightAccent, lightSubtle, lightError
	if isDark {
		accent, subtle, errCol = darkAccent, darkSubtle, darkError
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}

	t.App = lipgloss.NewStyle()
	t.Header = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(subtle).
		Padding(0, 1)
	t.SidebarHeading = lipgloss.NewStyle().Bold(true).Foreground(subtle).MarginTop(1)
	t.SidebarItem = lipgloss.NewStyle()
	t.SidebarSelected = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.SidebarEmpty = lipgloss.NewStyle().Italic(true).Foreground(subtle)
	t.SidebarSeparator = lipgloss.NewStyle().Foreground(subtle)

	t.QuestionBubble = lipgloss.NewStyle().
		Bold(true).
		Foreground(accent).
		PaddingLeft(2)
	t.AnswerBubble = lipgloss.NewStyle().PaddingLeft(2)
	t.WaitingBubble = lipgloss.NewStyle().Italic(true).Foreground(subtle).PaddingLeft(2)
	t.TableHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	t.TableCell = lipgloss.NewStyle()
	t.FeedbackActive = lipgloss.NewStyle().Foreground(accent)
	t.FeedbackMuted = lipgloss.NewStyle().Foreground(subtle)
	t.MessageMeta = lipgloss.NewStyle().Foreground(subtle)

	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(subtle).
		Padding(0, 1)
	t.Recording = lipgloss.NewStyle().Bold(true).Foreground(errCol)
	t.Disclaimer = lipgloss.NewStyle().Italic(true).Foreground(subtle)

	t.FormLabel = lipgloss.NewStyle().Bold(true)
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	t.ErrorText = lipgloss.NewStyle().Foreground(errCol)
	t.StatusBar = lipgloss.NewStyle().Foreground(subtle)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(accent)
	t.EmptyState = lipgloss.NewStyle().Italic(true).Foreground(subtle).Padding(1, 2)

	return t
}
