// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package routing implements the route guard: the single decision point that
// maps a requested path plus the current session onto allow-or-redirect.
// Every navigation in the UI passes through Decide before a screen is shown,
// so no protected screen can render without a live session.
package routing

import (
	"strings"
	"time"

	"github.com/jeranaias/insight-tui/internal/session"
)

// Well-known paths. Conversations live under the chat prefix.
const (
	LoginPath   = "/login"
	LandingPath = "/"
	chatPrefix  = "/chat/"
)

// ConversationPath returns the path of a conversation screen.
func ConversationPath(conversationID string) string {
	return chatPrefix + conversationID
}

// ConversationID extracts the conversation from a chat path, or "" when the
// path is not a chat path.
func ConversationID(path string) string {
	if !strings.HasPrefix(path, chatPrefix) {
		return ""
	}
	return strings.TrimPrefix(path, chatPrefix)
}

// =============================================================================
// DECISION
// =============================================================================

// Action is the outcome of a guard check.
type Action int

const (
	// Allow renders the requested path as-is.
	Allow Action = iota

	// Redirect navigates to Decision.Target instead.
	Redirect
)

// Decision is the guard's verdict on a single navigation.
type Decision struct {
	Action Action

	// Target is the replacement path when Action is Redirect.
	Target string

	// ClearSession is set when an expired session must be dropped before
	// the navigation completes.
	ClearSession bool

	// Resume holds the originally requested path when Target is the login
	// screen; sign-in navigates back to it.
	Resume string
}

// allow is the pass-through decision.
func allow() Decision {
	return Decision{Action: Allow}
}

// redirect builds a redirect decision.
func redirect(target string) Decision {
	return Decision{Action: Redirect, Target: target}
}

// =============================================================================
// GUARD
// =============================================================================

// protected reports whether a path requires a live session. Everything but
// the login screen does.
func protected(path string) bool {
	return path != LoginPath
}

// Decide evaluates one navigation. The rules apply in priority order:
//
//  1. An expired session is cleared and sent to login, unless the user is
//     already headed there.
//  2. A signed-in user never sees the login screen; they bounce to the
//     redirect target, or the landing screen when none is usable.
//  3. A protected path without a live session goes to login, remembering
//     the requested path so sign-in can resume it.
//  4. Everything else passes through.
//
// redirectParam carries the post-login destination when path is the login
// screen; it is ignored elsewhere.
func Decide(path, redirectParam string, sess session.Session, now time.Time) Decision {
	if sess.Expired(now) {
		if path == LoginPath {
			return Decision{Action: Allow, ClearSession: true}
		}
		d := redirect(LoginPath)
		d.ClearSession = true
		d.Resume = path
		return d
	}

	if path == LoginPath && sess.Valid(now) {
		return redirect(postLoginTarget(redirectParam))
	}

	if protected(path) && !sess.Valid(now) {
		d := redirect(LoginPath)
		d.Resume = path
		return d
	}

	return allow()
}

// postLoginTarget picks where a signed-in user lands when leaving the login
// screen. A redirect back to login itself would loop, so it falls back to
// the landing screen.
func postLoginTarget(redirectParam string) string {
	if redirectParam == "" || redirectParam == LoginPath {
		return LandingPath
	}
	return redirectParam
}
