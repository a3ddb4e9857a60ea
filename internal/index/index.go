// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrClosed        = errors.New("index is closed")
)

// =============================================================================
// MESSAGE INDEX
// =============================================================================

// MessageIndex indexes committed message content for cross-session search.
type MessageIndex struct {
	db      *sql.DB
	watcher *SessionWatcher
	mu      sync.RWMutex
	closed  bool
}

// Open opens (or creates) the index database at the given path.
func Open(dbPath string) (*MessageIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &MessageIndex{db: db}, nil
}

// Close stops the watcher, if any, and closes the database.
func (ix *MessageIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return nil
	}
	ix.closed = true

	if ix.watcher != nil {
		ix.watcher.Close()
	}
	return ix.db.Close()
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// IndexMessage adds or updates one message. Empty content is skipped:
// a voice-only turn with no transcript has nothing to search.
func (ix *MessageIndex) IndexMessage(msg model.Message) error {
	if msg.IsEmpty() {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return ErrClosed
	}

	_, err := ix.db.Exec(`
		INSERT INTO messages (message_id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET content = excluded.content
	`, msg.ID, msg.SessionID, msg.Role.String(), msg.Content, msg.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// IndexSession replaces all rows for a session with the document's
// current transcript.
func (ix *MessageIndex) IndexSession(doc *storage.SessionDoc) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return ErrClosed
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", doc.Session.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for _, msg := range doc.Messages {
		if msg.IsEmpty() {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO messages (message_id, session_id, role, content, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, msg.ID, msg.SessionID, msg.Role.String(), msg.Content, msg.Timestamp.Unix())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	return tx.Commit()
}

// RemoveSession drops all rows for a session.
func (ix *MessageIndex) RemoveSession(sessionID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return ErrClosed
	}

	if _, err := ix.db.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Clear drops all rows.
func (ix *MessageIndex) Clear() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return ErrClosed
	}

	if _, err := ix.db.Exec("DELETE FROM messages"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Rebuild re-indexes every session document in the store.
func (ix *MessageIndex) Rebuild(store *storage.SessionStore) error {
	docs, err := store.LoadAll()
	if err != nil {
		return err
	}

	if err := ix.Clear(); err != nil {
		return err
	}
	for _, doc := range docs {
		if err := ix.IndexSession(doc); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Hit is one search result.
type Hit struct {
	MessageID string
	SessionID string
	Role      string
	Content   string
	Timestamp time.Time
}

// Search finds messages matching the query, best match first.
// An empty or whitespace-only query returns no hits.
func (ix *MessageIndex) Search(query string, limit int) ([]Hit, error) {
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return nil, ErrClosed
	}

	rows, err := ix.db.Query(`
		SELECT m.message_id, m.session_id, m.role, m.content, m.created_at
		FROM messages_fts fts
		JOIN messages m ON m.id = fts.rowid
		WHERE messages_fts MATCH ?
		ORDER BY fts.rank
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var createdAt int64
		if err := rows.Scan(&h.MessageID, &h.SessionID, &h.Role, &h.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		h.Timestamp = time.Unix(createdAt, 0)
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

// Count returns the number of indexed messages.
func (ix *MessageIndex) Count() (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return 0, ErrClosed
	}

	var n int
	if err := ix.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// buildFTSQuery quotes each term so user input cannot inject FTS5
// operators. Terms match as prefixes.
func buildFTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}
