// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the authentication session: a bearer token plus the
// expiry instant parsed from it.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/insight-tui/internal/api"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the live session and keeps the store in sync with it.
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	client  *api.Client
	store   Store
	current Session
}

// NewManager creates a manager backed by the given store. The saved session
// is loaded eagerly; a load failure starts the manager signed out rather
// than failing startup.
func NewManager(client *api.Client, store Store) *Manager {
	m := &Manager{client: client, store: store}
	sess, err := store.Load()
	if err != nil {
		log.Printf("session load failed, starting signed out: %v", err)
		return m
	}
	m.current = sess
	return m
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Token returns the bearer token, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Token
}

// SignIn exchanges credentials for a token and persists the session.
// On failure the existing session is left untouched.
func (m *Manager) SignIn(ctx context.Context, username, password string) (Session, error) {
	tok, err := m.client.SignIn(ctx, username, password)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Token:    tok.AccessToken,
		Username: tok.Username,
		Expiry:   TokenExpiry(tok.AccessToken),
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	if err := m.store.Save(sess); err != nil {
		// The in-memory session still works for this run.
		log.Printf("session save failed: %v", err)
	}
	return sess, nil
}

// SignOut clears the live session and the store.
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		log.Printf("session clear failed: %v", err)
	}
}

// Expire drops an expired session the same way sign-out does. Split from
// SignOut so callers can log the two paths differently.
func (m *Manager) Expire() {
	log.Printf("session expired at %s", time.Now().Format(time.RFC3339))
	m.SignOut()
}
