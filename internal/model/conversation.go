// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the analytics
// assistant backend.
package model

import (
	"strings"
	"time"

	"github.com/jeranaias/insight-tui/internal/util"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a titled thread of messages. The ID is server-assigned and
// immutable; LastInteraction is advanced by the server on every new message,
// never by the client.
type Conversation struct {
	ID              string    `json:"conversation_id"`
	Title           string    `json:"title"`
	LastInteraction time.Time `json:"last_interaction"`
}

// DisplayTitle returns the title or a fallback for untitled threads.
func (c Conversation) DisplayTitle() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	return "Untitled conversation"
}

// TitlePreview truncates the title for the sidebar, rune-safe.
func (c Conversation) TitlePreview(maxLen int) string {
	return util.Truncate(c.DisplayTitle(), maxLen)
}
