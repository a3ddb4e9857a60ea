// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/util"
)

// =============================================================================
// STORED SESSION TYPE
// =============================================================================

// SessionDoc is the on-disk form of one session: its metadata plus the
// full ordered transcript.
type SessionDoc struct {
	Session  model.Session   `json:"session"`
	Messages []model.Message `json:"messages"`
}

// MessageCount returns the number of messages in the transcript.
func (d *SessionDoc) MessageCount() int {
	return len(d.Messages)
}

// Preview returns a short excerpt from the first user message.
// Returns empty string if no user messages exist.
func (d *SessionDoc) Preview() string {
	for _, msg := range d.Messages {
		if msg.Role == model.RoleUser && !msg.IsEmpty() {
			return msg.Preview(80)
		}
	}
	return ""
}

// ExportMarkdown renders the transcript as a Markdown document.
func (d *SessionDoc) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + d.Session.DisplayTitle() + "\n\n")
	sb.WriteString("Created: " + d.Session.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range d.Messages {
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		if msg.Media.AudioURL != "" {
			sb.WriteString("\n\n[audio](" + msg.Media.AudioURL + ")")
		}
		if msg.Media.VideoURL != "" {
			sb.WriteString("\n\n[video](" + msg.Media.VideoURL + ")")
		}
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore persists one JSON document per session id.
type SessionStore struct {
	// BaseDir is the directory for storing session documents
	// Default: ~/.tutortui/sessions/
	BaseDir string

	// MaxSessions limits stored sessions (0 = unlimited)
	MaxSessions int
}

// NewSessionStore creates a store under the user's home directory.
func NewSessionStore() (*SessionStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	return NewSessionStoreWithDir(filepath.Join(homeDir, ".tutortui", "sessions"))
}

// NewSessionStoreWithDir creates a store with a custom directory.
func NewSessionStoreWithDir(baseDir string) (*SessionStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &SessionStore{
		BaseDir:     baseDir,
		MaxSessions: 100,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a session document.
func (s *SessionStore) Save(doc *SessionDoc) error {
	if doc.Session.ID == "" {
		return ErrEmptySessionID
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.filePath(doc.Session.ID), data, 0644); err != nil {
		return err
	}

	if s.MaxSessions > 0 {
		s.enforceLimit()
	}

	return nil
}

// enforceLimit removes least recently active sessions if over limit.
func (s *SessionStore) enforceLimit() {
	docs, err := s.LoadAll()
	if err != nil || len(docs) <= s.MaxSessions {
		return
	}

	// LoadAll returns most recent first, so the tail is the excess
	for _, doc := range docs[s.MaxSessions:] {
		s.Delete(doc.Session.ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a session document by id.
func (s *SessionStore) Load(id string) (*SessionDoc, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var doc SessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// LoadAll reads every session document in the store, most recently
// active first. Corrupt or unreadable documents are skipped: a damaged
// store degrades to the sessions that survived, never an error.
func (s *SessionStore) LoadAll() ([]*SessionDoc, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*SessionDoc{}, nil
		}
		return nil, err
	}

	var docs []*SessionDoc
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		doc, err := s.Load(id)
		if err != nil {
			continue // Skip corrupted files
		}
		if doc.Session.ID == "" {
			continue // Valid JSON but not a session document
		}

		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Session.LastActivityAt.After(docs[j].Session.LastActivityAt)
	})

	return docs, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a session document by id.
func (s *SessionStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return err
	}

	return nil
}

// Clear removes all saved sessions.
func (s *SessionStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a session id.
func (s *SessionStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// Use errors.Is to check for these.
var (
	ErrSessionNotFound = &StoreError{Message: "session not found"}
	ErrEmptySessionID  = &StoreError{Message: "session id is empty"}
)

// StoreError represents a storage-related error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
