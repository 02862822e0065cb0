// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the insight interface.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Quit     key.Binding
	NextPane key.Binding

	NewConversation    key.Binding
	DeleteConversation key.Binding
	Reload             key.Binding

	Like    key.Binding
	Dislike key.Binding
	Copy    key.Binding
	Record  key.Binding

	SignOut key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("down", "move down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send / confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch pane"),
		),
		NewConversation: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "new conversation"),
		),
		DeleteConversation: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete conversation"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reload"),
		),
		Like: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "like answer"),
		),
		Dislike: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "dislike answer"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy answer"),
		),
		Record: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("C-v", "record voice question"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "sign out"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewConversation, k.Record, k.Quit}
}
