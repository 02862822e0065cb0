// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/insight-tui/internal/api"
	"github.com/jeranaias/insight-tui/internal/audio"
	"github.com/jeranaias/insight-tui/internal/chat"
	"github.com/jeranaias/insight-tui/internal/config"
	"github.com/jeranaias/insight-tui/internal/conversations"
	"github.com/jeranaias/insight-tui/internal/model"
	"github.com/jeranaias/insight-tui/internal/routing"
	"github.com/jeranaias/insight-tui/internal/session"
	"github.com/jeranaias/insight-tui/internal/ui/styles"
)

// screen identifies which top-level view is rendered.
type screen int

const (
	screenLogin screen = iota
	screenLanding
	screenChat
)

// pane is the focused region on the landing and chat screens.
type pane int

const (
	paneSidebar pane = iota
	paneComposer
)

// App is the root Bubble Tea model.
type App struct {
	cfg      *config.Config
	theme    *styles.Theme
	keys     KeyMap
	client   *api.Client
	sessions *session.Manager
	convs    *conversations.Controller
	chats    *chat.Controller
	recorder *audio.Recorder

	screen screen
	path   string
	// resume is the path sign-in returns to, captured by the route guard.
	resume string

	width  int
	height int

	// Login form.
	usernameInput textinput.Model
	passwordInput textinput.Model
	loginFocus    int
	loginErr      string
	signingIn     bool

	// Sidebar.
	convList    []model.Conversation
	convCursor  int
	convsLoaded bool
	convsErr    string
	focused     pane

	// Chat transcript.
	viewport  viewport.Model
	composer  textarea.Model
	renderer  *glamour.TermRenderer
	msgCursor int

	// Create modal.
	creating   bool
	titleInput textinput.Model
	createErr  string

	// Delete confirmation.
	confirmingDelete bool

	spinner   spinner.Model
	statusMsg string
	recording bool
}

// New builds the root model. The initial screen is chosen by the route
// guard from the persisted session.
func New(cfg *config.Config, theme *styles.Theme, client *api.Client, sessions *session.Manager, recorder *audio.Recorder) *App {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()
	username.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	title := textinput.New()
	title.Placeholder = "conversation title"
	title.CharLimit = 200

	composer := textarea.New()
	composer.Placeholder = "Ask the analytics assistant..."
	composer.SetHeight(3)
	composer.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	a := &App{
		cfg:           cfg,
		theme:         theme,
		keys:          DefaultKeyMap(),
		client:        client,
		sessions:      sessions,
		convs:         conversations.NewController(client),
		chats:         chat.NewController(),
		recorder:      recorder,
		usernameInput: username,
		passwordInput: password,
		titleInput:    title,
		composer:      composer,
		viewport:      viewport.New(0, 0),
		spinner:       sp,
	}
	a.navigate(routing.LandingPath, "")
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick, a.entryCmd())
}

// =============================================================================
// NAVIGATION
// =============================================================================

// navigate routes to a path through the guard. The guard decides whether the
// path renders, redirects, or forces a sign-out first.
func (a *App) navigate(path, redirectParam string) {
	d := routing.Decide(path, redirectParam, a.sessions.Current(), time.Now())
	if d.ClearSession {
		a.sessions.Expire()
	}
	if d.Action == routing.Redirect {
		if d.Resume != "" {
			a.resume = d.Resume
		}
		path = d.Target
		// The guard's output is final for any session state, so a second
		// pass cannot redirect again.
	}
	a.path = path
	a.applyPath(path)
}

// applyPath maps a guarded path onto screen state.
func (a *App) applyPath(path string) {
	switch {
	case path == routing.LoginPath:
		a.screen = screenLogin
		a.loginErr = ""
		a.passwordInput.SetValue("")
		a.usernameInput.Focus()
		a.passwordInput.Blur()
		a.loginFocus = 0
	case path == routing.LandingPath:
		a.screen = screenLanding
		a.focused = paneSidebar
		a.chats.SetActive("")
	default:
		id := routing.ConversationID(path)
		a.screen = screenChat
		a.chats.SetActive(id)
		a.focused = paneComposer
		a.composer.Focus()
		a.msgCursor = -1
	}
}

// entryCmd issues the loads the current screen needs on entry.
func (a *App) entryCmd() tea.Cmd {
	switch a.screen {
	case screenLanding:
		return a.loadConversationsCmd()
	case screenChat:
		var cmds []tea.Cmd
		if !a.convsLoaded {
			cmds = append(cmds, a.loadConversationsCmd())
		}
		if ticket, ok := a.chats.EnsureLoaded(a.chats.Active()); ok {
			cmds = append(cmds, a.loadHistoryCmd(ticket))
		}
		return tea.Batch(cmds...)
	default:
		return nil
	}
}

// openConversation navigates to a conversation and starts whatever loads it
// needs.
func (a *App) openConversation(id string) tea.Cmd {
	a.navigate(routing.ConversationPath(id), "")
	return a.entryCmd()
}

// selectedConversation returns the conversation under the sidebar cursor.
func (a *App) selectedConversation() (model.Conversation, bool) {
	if a.convCursor < 0 || a.convCursor >= len(a.convList) {
		return model.Conversation{}, false
	}
	return a.convList[a.convCursor], true
}
