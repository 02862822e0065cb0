// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the authentication session: a bearer token plus the
// expiry instant parsed from it. The session is the single input of the route
// guard; an expired session is indistinguishable from no session at all.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// Session is the persisted authentication state. The zero value means
// signed out.
type Session struct {
	Token    string
	Username string
	Expiry   time.Time
}

// Present reports whether a token exists at all, expired or not.
func (s Session) Present() bool {
	return s.Token != ""
}

// Valid reports whether the session authorizes protected screens at the
// given instant. A session with no parsable expiry never expires client-side;
// the backend still rejects its token once stale.
func (s Session) Valid(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	if s.Expiry.IsZero() {
		return true
	}
	return now.Before(s.Expiry)
}

// Expired reports whether a token exists but its expiry has passed.
func (s Session) Expired(now time.Time) bool {
	return s.Present() && !s.Valid(now)
}

// =============================================================================
// TOKEN INSPECTION
// =============================================================================

// TokenExpiry extracts the exp claim from a bearer token without verifying
// the signature. The client never holds the signing key; verification is the
// backend's job. An opaque or claim-less token yields the zero time.
func TokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Store persists the session across process restarts.
type Store interface {
	// Load returns the saved session, or the zero session when none exists.
	Load() (Session, error)

	// Save replaces the saved session.
	Save(Session) error

	// Clear removes the saved session.
	Clear() error
}
