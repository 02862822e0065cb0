// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/insight-tui/internal/chat"
	"github.com/jeranaias/insight-tui/internal/conversations"
	"github.com/jeranaias/insight-tui/internal/model"
)

// disclaimer mirrors the footer every answer surface carries.
const disclaimer = "AI can make mistakes. Verify important information."

// =============================================================================
// LAYOUT
// =============================================================================

// resize recomputes widget dimensions and rebuilds the markdown renderer
// for the new wrap width.
func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	sidebar := a.cfg.UI.SidebarWidth
	transcript := width - sidebar - 4
	if transcript < 20 {
		transcript = 20
	}

	a.viewport.Width = transcript
	a.viewport.Height = height - a.composer.Height() - 6
	a.composer.SetWidth(transcript)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(transcript-2),
	)
	if err == nil {
		a.renderer = r
	}
	a.refreshTranscript()
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var body string
	switch a.screen {
	case screenLogin:
		body = a.viewLogin()
	case screenLanding:
		body = a.viewWorkspace("")
	case screenChat:
		body = a.viewWorkspace(a.chats.Active())
	}

	if a.creating {
		return a.overlayModal(a.viewCreateModal())
	}
	if a.confirmingDelete {
		return a.overlayModal(a.viewDeleteConfirm())
	}
	return body
}

// overlayModal centers a modal box on an otherwise blank backdrop. A true
// compositing overlay is not worth the complexity at terminal sizes.
func (a *App) overlayModal(box string) string {
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// LOGIN SCREEN
// =============================================================================

func (a *App) viewLogin() string {
	t := a.theme

	var b strings.Builder
	b.WriteString(t.FormLabel.Render("Sign in to insight"))
	b.WriteString("\n\n")
	b.WriteString(t.FormLabel.Render("Username"))
	b.WriteString("\n")
	b.WriteString(a.usernameInput.View())
	b.WriteString("\n\n")
	b.WriteString(t.FormLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(a.passwordInput.View())
	b.WriteString("\n")

	if a.signingIn {
		b.WriteString("\n" + a.spinner.View() + " Signing in...")
	}
	if a.loginErr != "" {
		b.WriteString("\n" + t.ErrorText.Render(a.loginErr))
	}

	form := t.FormBox.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, form)
}

// =============================================================================
// WORKSPACE (LANDING + CHAT)
// =============================================================================

// viewWorkspace renders the sidebar next to either the empty landing pane or
// a conversation transcript.
func (a *App) viewWorkspace(activeConv string) string {
	t := a.theme

	sidebar := t.Sidebar.
		Width(a.cfg.UI.SidebarWidth).
		Height(a.height - 2).
		Render(a.viewSidebar(activeConv))

	var main string
	if activeConv == "" {
		main = t.EmptyState.Render("Select a conversation, or press " +
			t.ShortcutKey.Render("C-t") + " to start a new one.")
	} else {
		main = a.viewConversation(activeConv)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.JoinVertical(lipgloss.Left,
		t.Header.Render("insight"),
		content,
		a.viewStatusBar(),
	)
}

// viewSidebar renders the bucketed conversation list.
func (a *App) viewSidebar(activeConv string) string {
	t := a.theme

	if a.convsErr != "" {
		return t.ErrorText.Render(a.convsErr)
	}
	if !a.convsLoaded {
		return a.spinner.View() + " Loading..."
	}
	if len(a.convList) == 0 {
		return t.SidebarEmpty.Render("No conversations yet")
	}

	buckets := conversations.Categorize(a.convList, time.Now())

	var b strings.Builder
	for _, group := range []struct {
		label string
		convs []model.Conversation
	}{
		{"Today", buckets.Today},
		{"Yesterday", buckets.Yesterday},
		{"Previous 7 days", buckets.Previous7Days},
		{"Previous 30 days", buckets.Previous30Days},
		{"Previous year", buckets.PreviousYear},
	} {
		if len(group.convs) == 0 {
			continue
		}
		b.WriteString(t.SidebarHeading.Render(group.label))
		b.WriteString("\n")
		for _, conv := range group.convs {
			line := conv.TitlePreview(a.cfg.UI.SidebarWidth - 4)
			style := t.SidebarItem
			switch {
			case a.isCursorOn(conv.ID):
				style = t.SidebarSelected
				line = "> " + line
			case conv.ID == activeConv:
				style = t.SidebarSelected
				line = "  " + line
			default:
				line = "  " + line
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a *App) isCursorOn(conversationID string) bool {
	conv, ok := a.selectedConversation()
	return ok && conv.ID == conversationID && a.focused == paneSidebar
}

// viewConversation renders the transcript, composer, and disclaimer.
func (a *App) viewConversation(conversationID string) string {
	t := a.theme

	var body string
	switch a.chats.Phase(conversationID) {
	case chat.PhaseLoading:
		body = a.spinner.View() + " Loading conversation..."
	case chat.PhaseError:
		body = t.ErrorText.Render(a.chats.ErrorText(conversationID)) +
			"\n" + t.MessageMeta.Render("Press "+t.ShortcutKey.Render("C-r")+" to retry.")
	default:
		body = a.viewport.View()
	}

	composer := t.Composer.Render(a.composer.View())
	if a.recording {
		composer = t.Recording.Render("● recording - press C-v to finish, Esc to discard")
	} else if a.chats.Sending(conversationID) {
		composer = t.Composer.Render(a.spinner.View() + " Waiting for the assistant...")
	}

	parts := []string{body, composer, t.Disclaimer.Render(disclaimer)}
	if errText := a.chats.ErrorText(conversationID); errText != "" &&
		a.chats.Phase(conversationID) == chat.PhaseSendFailed {
		parts = append(parts, t.ErrorText.Render("Last question failed. Ask again."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) viewStatusBar() string {
	t := a.theme
	if a.statusMsg != "" {
		return t.StatusBar.Render(" " + a.statusMsg)
	}

	var parts []string
	for _, b := range a.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, t.ShortcutKey.Render(h.Key)+" "+h.Desc)
	}
	return t.StatusBar.Render(" " + strings.Join(parts, "  "))
}

// =============================================================================
// MODALS
// =============================================================================

func (a *App) viewCreateModal() string {
	t := a.theme

	var b strings.Builder
	b.WriteString(t.FormLabel.Render("New conversation"))
	b.WriteString("\n\n")
	b.WriteString(a.titleInput.View())
	if a.createErr != "" {
		b.WriteString("\n" + t.ErrorText.Render(a.createErr))
	}
	b.WriteString("\n\n" + t.MessageMeta.Render("Enter to create, Esc to cancel"))
	return t.FormBox.Render(b.String())
}

func (a *App) viewDeleteConfirm() string {
	t := a.theme

	title := "this conversation"
	if conv, ok := a.selectedConversation(); ok {
		title = "\"" + conv.TitlePreview(40) + "\""
	}

	var b strings.Builder
	b.WriteString(t.FormLabel.Render("Delete " + title + "?"))
	b.WriteString("\n\n")
	b.WriteString(t.MessageMeta.Render("y / Enter to delete, n / Esc to keep"))
	return t.FormBox.Render(b.String())
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshTranscript re-renders the active conversation into the viewport.
func (a *App) refreshTranscript() {
	active := a.chats.Active()
	if active == "" {
		a.viewport.SetContent("")
		return
	}

	msgs := a.chats.Messages(active)
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.renderMessage(m, i == a.msgCursor))
	}
	a.viewport.SetContent(b.String())
}

// renderMessage renders one question/answer exchange.
func (a *App) renderMessage(m model.Message, selected bool) string {
	t := a.theme

	marker := "  "
	if selected {
		marker = "> "
	}

	question := m.QuestionPreview(a.viewport.Width - 6)
	head := t.QuestionBubble.Render(marker + "You: " + question)

	var answer string
	if m.IsPlaceholder() {
		answer = t.WaitingBubble.Render(m.Answer.Content)
	} else {
		answer = a.renderAnswer(m.Answer)
		if fb := renderFeedbackMarker(m.Feedback); fb != "" {
			style := t.FeedbackMuted
			if m.Feedback.Valid() {
				style = t.FeedbackActive
			}
			answer += "\n" + style.Render("    "+fb)
		}
	}
	return head + "\n" + answer + "\n"
}

// renderAnswer dispatches on the answer kind.
func (a *App) renderAnswer(ans model.Answer) string {
	t := a.theme

	switch ans.Kind {
	case model.AnswerDict:
		return t.AnswerBubble.Render(renderTable(ans, a.viewport.Width-4))
	case model.AnswerImage:
		// Base64 PNG cannot render in a cell grid; the browser client
		// showed the chart inline, here a marker stands in.
		return t.AnswerBubble.Render("[chart image - not displayable in the terminal]")
	default:
		text := ans.Content
		if a.renderer != nil {
			if out, err := a.renderer.Render(text); err == nil {
				text = strings.TrimRight(out, "\n")
			}
		}
		return t.AnswerBubble.Render(text)
	}
}

// renderFeedbackMarker shows the current annotation on an answer.
func renderFeedbackMarker(fb model.Feedback) string {
	switch fb {
	case model.FeedbackLike:
		return "[+1]"
	case model.FeedbackDislike:
		return "[-1]"
	default:
		return ""
	}
}

// renderTable lays out a DICT answer as an aligned table. Column order comes
// from the backend's document order, widths from the widest cell, measured
// in display cells so CJK content aligns.
func renderTable(ans model.Answer, maxWidth int) string {
	cols := ans.ColumnOrder()
	if len(cols) == 0 {
		return "(empty result)"
	}

	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col)
	}
	for _, row := range ans.Rows {
		for i, col := range cols {
			if w := runewidth.StringWidth(row.Values[col]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	// Clamp very wide columns so one long cell cannot push the table off
	// screen.
	maxCol := maxWidth / len(cols)
	if maxCol < 8 {
		maxCol = 8
	}
	for i := range widths {
		if widths[i] > maxCol {
			widths[i] = maxCol
		}
	}

	var b strings.Builder
	writeRow := func(cells func(i int, col string) string) {
		for i, col := range cols {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := runewidth.Truncate(cells(i, col), widths[i], "…")
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteString("\n")
	}

	writeRow(func(i int, col string) string { return col })
	writeRow(func(i int, col string) string {
		return strings.Repeat("-", widths[i])
	})
	for _, row := range ans.Rows {
		r := row
		writeRow(func(i int, col string) string { return r.Values[col] })
	}
	b.WriteString(fmt.Sprintf("(%d rows)", len(ans.Rows)))
	return b.String()
}
