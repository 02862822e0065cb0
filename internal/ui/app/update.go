// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/insight-tui/internal/api"
	"github.com/jeranaias/insight-tui/internal/conversations"
	"github.com/jeranaias/insight-tui/internal/model"
	"github.com/jeranaias/insight-tui/internal/routing"
)

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case signInResultMsg:
		return a.handleSignInResult(msg)
	case conversationsLoadedMsg:
		return a.handleConversationsLoaded(msg)
	case historyLoadedMsg:
		return a.handleHistoryLoaded(msg)
	case sendFinishedMsg:
		return a.handleSendFinished(msg)
	case feedbackResultMsg:
		a.chats.ApplyFeedbackResult(msg.conversationID, msg.messageID, msg.prev, msg.err)
		if msg.err != nil {
			return a.withStatus("Feedback could not be saved")
		}
		a.refreshTranscript()
		return a, nil
	case conversationCreatedMsg:
		return a.handleConversationCreated(msg)
	case conversationDeletedMsg:
		return a.handleConversationDeleted(msg)
	case recordingToggledMsg:
		return a.handleRecordingToggled(msg)

	case statusClearMsg:
		a.statusMsg = ""
		return a, nil
	}

	return a, a.updateFocused(msg)
}

// updateFocused forwards non-key messages to the focused input widgets.
func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch a.screen {
	case screenLogin:
		a.usernameInput, cmd = a.usernameInput.Update(msg)
		cmds = append(cmds, cmd)
		a.passwordInput, cmd = a.passwordInput.Update(msg)
		cmds = append(cmds, cmd)
	case screenChat:
		a.composer, cmd = a.composer.Update(msg)
		cmds = append(cmds, cmd)
	}
	if a.creating {
		a.titleInput, cmd = a.titleInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	// Modal layers swallow everything else first.
	if a.creating {
		return a.handleCreateModalKey(msg)
	}
	if a.confirmingDelete {
		return a.handleDeleteConfirmKey(msg)
	}

	switch a.screen {
	case screenLogin:
		return a.handleLoginKey(msg)
	case screenLanding:
		return a.handleLandingKey(msg)
	case screenChat:
		return a.handleChatKey(msg)
	}
	return a, nil
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Submit):
		if a.loginFocus == 0 {
			// Enter on the username field moves to the password field.
			a.focusLoginField(1)
			return a, nil
		}
		username := strings.TrimSpace(a.usernameInput.Value())
		password := a.passwordInput.Value()
		if username == "" || password == "" {
			a.loginErr = "Enter a username and password"
			return a, nil
		}
		a.signingIn = true
		a.loginErr = ""
		return a, a.signInCmd(username, password)

	case key.Matches(msg, a.keys.NextPane), msg.String() == "shift+tab":
		a.focusLoginField(1 - a.loginFocus)
		return a, nil
	}

	var cmd tea.Cmd
	if a.loginFocus == 0 {
		a.usernameInput, cmd = a.usernameInput.Update(msg)
	} else {
		a.passwordInput, cmd = a.passwordInput.Update(msg)
	}
	return a, cmd
}

func (a *App) focusLoginField(idx int) {
	a.loginFocus = idx
	if idx == 0 {
		a.usernameInput.Focus()
		a.passwordInput.Blur()
	} else {
		a.usernameInput.Blur()
		a.passwordInput.Focus()
	}
}

func (a *App) handleLandingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.convCursor > 0 {
			a.convCursor--
		}
		return a, nil
	case key.Matches(msg, a.keys.Down):
		if a.convCursor < len(a.convList)-1 {
			a.convCursor++
		}
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		if conv, ok := a.selectedConversation(); ok {
			return a, a.openConversation(conv.ID)
		}
		return a, nil
	case key.Matches(msg, a.keys.NewConversation):
		a.openCreateModal()
		return a, nil
	case key.Matches(msg, a.keys.DeleteConversation):
		if _, ok := a.selectedConversation(); ok {
			a.confirmingDelete = true
		}
		return a, nil
	case key.Matches(msg, a.keys.Reload):
		return a, a.loadConversationsCmd()
	case key.Matches(msg, a.keys.SignOut):
		return a.signOut()
	}
	return a, nil
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active := a.chats.Active()

	switch {
	case key.Matches(msg, a.keys.Cancel):
		if a.recording {
			a.recording = false
			a.recorder.Cancel()
			return a.withStatus("Recording discarded")
		}
		a.navigate(routing.LandingPath, "")
		return a, a.entryCmd()

	case key.Matches(msg, a.keys.NextPane):
		if a.focused == paneComposer {
			a.focused = paneSidebar
			a.composer.Blur()
		} else {
			a.focused = paneComposer
			a.composer.Focus()
		}
		return a, nil

	case key.Matches(msg, a.keys.NewConversation):
		a.openCreateModal()
		return a, nil

	case key.Matches(msg, a.keys.DeleteConversation):
		a.confirmingDelete = true
		return a, nil

	case key.Matches(msg, a.keys.Reload):
		ticket := a.chats.BeginReload(active)
		return a, a.loadHistoryCmd(ticket)

	case key.Matches(msg, a.keys.SignOut):
		return a.signOut()

	case key.Matches(msg, a.keys.Record):
		if !a.recorder.Available() {
			return a.withStatus("No capture device configured")
		}
		if a.chats.Sending(active) {
			return a, nil
		}
		return a, a.toggleRecordingCmd()

	case key.Matches(msg, a.keys.Like):
		return a.applyFeedback(model.FeedbackLike)
	case key.Matches(msg, a.keys.Dislike):
		return a.applyFeedback(model.FeedbackDislike)

	case key.Matches(msg, a.keys.Copy):
		return a.copySelectedAnswer()

	case key.Matches(msg, a.keys.Up):
		if a.focused == paneSidebar {
			if a.convCursor > 0 {
				a.convCursor--
			}
			return a, nil
		}
		a.moveMessageCursor(-1)
		return a, nil

	case key.Matches(msg, a.keys.Down):
		if a.focused == paneSidebar {
			if a.convCursor < len(a.convList)-1 {
				a.convCursor++
			}
			return a, nil
		}
		a.moveMessageCursor(1)
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		if a.focused == paneSidebar {
			if conv, ok := a.selectedConversation(); ok {
				return a, a.openConversation(conv.ID)
			}
			return a, nil
		}
		return a.submitComposer()
	}

	if a.focused == paneComposer {
		var cmd tea.Cmd
		a.composer, cmd = a.composer.Update(msg)
		return a, cmd
	}
	return a, nil
}

// moveMessageCursor shifts the answer selection used by feedback and copy.
func (a *App) moveMessageCursor(delta int) {
	msgs := a.chats.Messages(a.chats.Active())
	if len(msgs) == 0 {
		return
	}
	if a.msgCursor < 0 {
		a.msgCursor = len(msgs) - 1
	} else {
		a.msgCursor += delta
	}
	if a.msgCursor < 0 {
		a.msgCursor = 0
	}
	if a.msgCursor >= len(msgs) {
		a.msgCursor = len(msgs) - 1
	}
	a.refreshTranscript()
}

// submitComposer sends the composed question.
func (a *App) submitComposer() (tea.Model, tea.Cmd) {
	active := a.chats.Active()
	text := strings.TrimSpace(a.composer.Value())
	if text == "" {
		return a, nil
	}
	q := model.NewTextQuestion(text)

	if _, ok := a.chats.BeginSend(active, q); !ok {
		return a, nil
	}
	a.composer.Reset()
	a.refreshTranscript()
	a.viewport.GotoBottom()
	return a, a.sendMessageCmd(active, q)
}

// applyFeedback sets feedback on the selected answer optimistically.
func (a *App) applyFeedback(fb model.Feedback) (tea.Model, tea.Cmd) {
	active := a.chats.Active()
	msgs := a.chats.Messages(active)
	if a.msgCursor < 0 || a.msgCursor >= len(msgs) {
		return a, nil
	}
	target := msgs[a.msgCursor]

	prev, ok := a.chats.SetFeedback(active, target.ID, fb)
	if !ok {
		return a, nil
	}
	a.refreshTranscript()
	return a, a.updateFeedbackCmd(active, target.ID, fb, prev)
}

// copySelectedAnswer puts the selected answer on the system clipboard via
// OSC 52, the same flattened text the browser client copied.
func (a *App) copySelectedAnswer() (tea.Model, tea.Cmd) {
	msgs := a.chats.Messages(a.chats.Active())
	if a.msgCursor < 0 || a.msgCursor >= len(msgs) {
		return a, nil
	}
	m := msgs[a.msgCursor]
	if m.IsPlaceholder() {
		return a, nil
	}
	termenv.Copy(m.Answer.PlainText())
	return a.withStatus("Answer copied")
}

// =============================================================================
// MODAL KEY HANDLING
// =============================================================================

func (a *App) openCreateModal() {
	a.creating = true
	a.createErr = ""
	a.titleInput.SetValue("")
	a.titleInput.Focus()
}

func (a *App) handleCreateModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.creating = false
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		title := strings.TrimSpace(a.titleInput.Value())
		if title == "" {
			a.createErr = "Title must not be empty"
			return a, nil
		}
		return a, a.createConversationCmd(title)
	}

	var cmd tea.Cmd
	a.titleInput, cmd = a.titleInput.Update(msg)
	return a, cmd
}

func (a *App) handleDeleteConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel), msg.String() == "n":
		a.confirmingDelete = false
		return a, nil
	case key.Matches(msg, a.keys.Submit), msg.String() == "y":
		a.confirmingDelete = false
		target := a.chats.Active()
		if target == "" {
			if conv, ok := a.selectedConversation(); ok {
				target = conv.ID
			}
		}
		if target == "" {
			return a, nil
		}
		return a, a.deleteConversationCmd(target)
	}
	return a, nil
}

// =============================================================================
// ASYNC RESULT HANDLING
// =============================================================================

func (a *App) handleSignInResult(msg signInResultMsg) (tea.Model, tea.Cmd) {
	a.signingIn = false
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrInvalidCredentials) {
			a.loginErr = "Incorrect username or password"
		} else {
			a.loginErr = "Could not reach the backend"
		}
		return a, nil
	}

	target := a.resume
	a.resume = ""
	a.navigate(routing.LoginPath, target)
	return a, a.entryCmd()
}

func (a *App) handleConversationsLoaded(msg conversationsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			return a.redirectToLogin()
		}
		a.convsErr = "Could not load conversations"
		return a, nil
	}
	a.convsErr = ""
	a.convsLoaded = true
	a.convList = msg.convs
	if a.convCursor >= len(a.convList) {
		a.convCursor = len(a.convList) - 1
	}
	if a.convCursor < 0 {
		a.convCursor = 0
	}
	return a, nil
}

func (a *App) handleHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil && api.IsUnauthorized(msg.err) {
		return a.redirectToLogin()
	}
	if !a.chats.CommitLoad(msg.ticket, msg.msgs, msg.err) {
		return a, nil
	}
	if msg.ticket.ConversationID == a.chats.Active() {
		a.refreshTranscript()
		a.viewport.GotoBottom()
	}
	return a, nil
}

func (a *App) handleSendFinished(msg sendFinishedMsg) (tea.Model, tea.Cmd) {
	a.chats.FinishSend(msg.conversationID, msg.err)

	// The history refetch runs whether the send worked or not; the refetch
	// is what settles the placeholder. The sidebar refreshes too since the
	// server advanced last_interaction.
	ticket := a.chats.BeginReload(msg.conversationID)
	cmds := []tea.Cmd{a.loadHistoryCmd(ticket), a.loadConversationsCmd()}

	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			return a.redirectToLogin()
		}
		a.statusMsg = "The question could not be answered"
		cmds = append(cmds, clearStatusCmd())
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleConversationCreated(msg conversationCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			return a.redirectToLogin()
		}
		a.createErr = "Could not create the conversation"
		return a, nil
	}
	a.creating = false
	// Jump straight into the new thread.
	cmds := []tea.Cmd{a.loadConversationsCmd(), a.openConversation(msg.conv.ID)}
	return a, tea.Batch(cmds...)
}

func (a *App) handleConversationDeleted(msg conversationDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			return a.redirectToLogin()
		}
		return a.withStatus("Could not delete the conversation")
	}

	next := conversations.NextAfterDelete(a.convList, msg.conversationID)
	a.chats.Forget(msg.conversationID)

	cmds := []tea.Cmd{a.loadConversationsCmd()}
	if next != "" {
		cmds = append(cmds, a.openConversation(next))
	} else {
		a.navigate(routing.LandingPath, "")
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleRecordingToggled(msg recordingToggledMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.recording = false
		return a.withStatus("Voice capture failed")
	}
	if msg.started {
		a.recording = true
		return a, nil
	}

	a.recording = false
	if msg.payload == "" {
		return a.withStatus("Recording was empty")
	}

	active := a.chats.Active()
	q := model.NewAudioQuestion(msg.payload)
	if _, ok := a.chats.BeginSend(active, q); !ok {
		return a, nil
	}
	a.refreshTranscript()
	a.viewport.GotoBottom()
	return a, a.sendMessageCmd(active, q)
}

// =============================================================================
// HELPERS
// =============================================================================

// signOut drops the session and routes to login.
func (a *App) signOut() (tea.Model, tea.Cmd) {
	a.sessions.SignOut()
	a.convsLoaded = false
	a.convList = nil
	a.navigate(routing.LoginPath, "")
	return a, nil
}

// redirectToLogin handles a 401 from any operation: the token is stale, so
// the guard sends the user back to sign in and remembers where they were.
func (a *App) redirectToLogin() (tea.Model, tea.Cmd) {
	came := a.path
	a.sessions.SignOut()
	a.navigate(came, "")
	return a, nil
}

// withStatus sets a transient status line.
func (a *App) withStatus(text string) (tea.Model, tea.Cmd) {
	a.statusMsg = text
	return a, clearStatusCmd()
}
