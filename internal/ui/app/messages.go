// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app implements the insight TUI: three screens (login, landing,
// conversation) driven by the Bubble Tea runtime. Every navigation between
// screens passes through the route guard before a screen renders.
package app

import (
	"github.com/jeranaias/insight-tui/internal/chat"
	"github.com/jeranaias/insight-tui/internal/model"
	"github.com/jeranaias/insight-tui/internal/session"
)

// =============================================================================
// ASYNC RESULT MESSAGES
// =============================================================================

// signInResultMsg carries the outcome of a credentials exchange.
type signInResultMsg struct {
	sess session.Session
	err  error
}

// conversationsLoadedMsg carries a refreshed conversation list.
type conversationsLoadedMsg struct {
	convs []model.Conversation
	err   error
}

// historyLoadedMsg carries one history fetch, tagged with its ticket so the
// chat controller can drop stale results.
type historyLoadedMsg struct {
	ticket chat.LoadTicket
	msgs   []model.Message
	err    error
}

// sendFinishedMsg reports that the HTTP send settled. The history refetch
// is issued on receipt regardless of err.
type sendFinishedMsg struct {
	conversationID string
	err            error
}

// feedbackResultMsg settles an optimistic feedback update.
type feedbackResultMsg struct {
	conversationID string
	messageID      string
	prev           model.Feedback
	err            error
}

// conversationCreatedMsg carries a newly created conversation.
type conversationCreatedMsg struct {
	conv model.Conversation
	err  error
}

// conversationDeletedMsg reports a completed delete.
type conversationDeletedMsg struct {
	conversationID string
	err            error
}

// recordingToggledMsg reports a capture toggle: either a recording started,
// or one finished and payload carries its base64 audio.
type recordingToggledMsg struct {
	started bool
	payload string
	err     error
}

// statusClearMsg removes a transient status line.
type statusClearMsg struct{}
