// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for tutoring sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OWNER ROLE
// =============================================================================

// OwnerRole identifies who a session belongs to on the product side.
type OwnerRole string

const (
	OwnerStudent OwnerRole = "student"
	OwnerParent  OwnerRole = "parent"
	OwnerTeacher OwnerRole = "teacher"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is one persistent conversation thread. Message history lives in the
// store keyed by the session ID; the session itself carries only metadata.
//
// Sessions are mutated by the store alone (title and activity bumps) and are
// destroyed only by an explicit delete.
type Session struct {
	ID             string    `json:"id"`
	OwnerRole      OwnerRole `json:"owner_role"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// NewSession creates a session with a generated ID and both timestamps set.
func NewSession(owner OwnerRole) *Session {
	now := time.Now()
	return &Session{
		ID:             "sess_" + uuid.NewString(),
		OwnerRole:      owner,
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Touch bumps the activity timestamp. Called on every message append, not on
// mere session switches, so recency ordering reflects real conversation.
func (s *Session) Touch() {
	s.LastActivityAt = time.Now()
}

// DisplayTitle returns the title or a default for untitled sessions.
func (s *Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "New session"
}
