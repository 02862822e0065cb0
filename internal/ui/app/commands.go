// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/insight-tui/internal/chat"
	"github.com/jeranaias/insight-tui/internal/model"
)

// opTimeout bounds one backend operation from the UI side. Sends get the
// configured timeout since the backend answers synchronously.
const opTimeout = 15 * time.Second

// =============================================================================
// COMMAND CONSTRUCTORS
// =============================================================================

// signInCmd exchanges credentials for a session.
func (a *App) signInCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		sess, err := a.sessions.SignIn(ctx, username, password)
		return signInResultMsg{sess: sess, err: err}
	}
}

// loadConversationsCmd refreshes the sidebar list.
func (a *App) loadConversationsCmd() tea.Cmd {
	token := a.sessions.Token()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		convs, err := a.convs.List(ctx, token)
		return conversationsLoadedMsg{convs: convs, err: err}
	}
}

// loadHistoryCmd fetches a conversation's messages under a ticket.
func (a *App) loadHistoryCmd(ticket chat.LoadTicket) tea.Cmd {
	token := a.sessions.Token()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		msgs, err := a.client.ListMessages(ctx, ticket.ConversationID, token)
		return historyLoadedMsg{ticket: ticket, msgs: msgs, err: err}
	}
}

// sendMessageCmd submits a question and blocks until the backend answers.
func (a *App) sendMessageCmd(conversationID string, q model.Question) tea.Cmd {
	token := a.sessions.Token()
	timeout := a.cfg.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_, err := a.client.SendMessage(ctx, conversationID, q, token)
		return sendFinishedMsg{conversationID: conversationID, err: err}
	}
}

// createConversationCmd makes a new titled thread.
func (a *App) createConversationCmd(title string) tea.Cmd {
	token := a.sessions.Token()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		conv, err := a.convs.Create(ctx, title, token)
		return conversationCreatedMsg{conv: conv, err: err}
	}
}

// deleteConversationCmd removes a thread.
func (a *App) deleteConversationCmd(conversationID string) tea.Cmd {
	token := a.sessions.Token()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		err := a.convs.Delete(ctx, conversationID, token)
		return conversationDeletedMsg{conversationID: conversationID, err: err}
	}
}

// updateFeedbackCmd pushes an optimistic feedback change to the backend.
func (a *App) updateFeedbackCmd(conversationID, messageID string, fb, prev model.Feedback) tea.Cmd {
	token := a.sessions.Token()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		err := a.client.UpdateFeedback(ctx, conversationID, messageID, fb, token)
		return feedbackResultMsg{
			conversationID: conversationID,
			messageID:      messageID,
			prev:           prev,
			err:            err,
		}
	}
}

// toggleRecordingCmd starts or stops voice capture. Stopping yields the
// base64 payload that becomes an AUDIO question.
func (a *App) toggleRecordingCmd() tea.Cmd {
	return func() tea.Msg {
		payload, started, err := a.recorder.Toggle(context.Background())
		return recordingToggledMsg{started: started, payload: payload, err: err}
	}
}

// clearStatusCmd removes the status line after a short delay.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}
