// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists the authentication session in a local SQLite
// database under the config directory. A single-row table keeps the schema
// honest: saving always replaces, loading always reads row 1.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/insight-tui/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	token      TEXT NOT NULL,
	username   TEXT NOT NULL,
	expiry     INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteStore implements session.Store on a local database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open creates or opens the session database at path. The containing
// directory is created with owner-only permissions since the file holds a
// bearer token.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// One writer, one process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to restrict session database permissions: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load implements session.Store. A missing row is a signed-out state, not
// an error.
func (s *SQLiteStore) Load() (session.Session, error) {
	var (
		sess      session.Session
		expiryUnx int64
	)
	err := s.db.QueryRow(`SELECT token, username, expiry FROM session WHERE id = 1`).
		Scan(&sess.Token, &sess.Username, &expiryUnx)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if expiryUnx > 0 {
		sess.Expiry = time.Unix(expiryUnx, 0)
	}
	return sess, nil
}

// Save implements session.Store.
func (s *SQLiteStore) Save(sess session.Session) error {
	var expiryUnx int64
	if !sess.Expiry.IsZero() {
		expiryUnx = sess.Expiry.Unix()
	}

	_, err := s.db.Exec(`
		INSERT INTO session (id, token, username, expiry, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			username = excluded.username,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at`,
		sess.Token, sess.Username, expiryUnx, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear implements session.Store.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
