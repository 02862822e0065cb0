// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the analytics assistant backend.
package api

import (
	"errors"
	"fmt"
)

// Error variables for common backend failures. Controllers translate these
// into view behavior: ErrUnauthorized triggers the same redirect-to-login
// path the route guard takes, ErrNotFound becomes a terminal chat-level
// error, everything else surfaces as a generic failure state.
var (
	// ErrInvalidCredentials indicates the identity service rejected the
	// username/password pair, or returned no token.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates a missing or expired bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the conversation does not exist or does not
	// belong to the caller.
	ErrNotFound = errors.New("not found")
)

// APIError represents a transport-level or unmapped backend error.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// IsUnauthorized reports whether err should trigger a redirect to login.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether err is a missing-conversation error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
