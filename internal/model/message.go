// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for tutoring sessions and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Tutor"
	default:
		return string(r)
	}
}

// =============================================================================
// MEDIA REFERENCES
// =============================================================================

// Media holds optional references to synthesized audio/video renditions of an
// assistant message. Absent URLs mean the message is text-only; that is the
// normal case, not an error.
type Media struct {
	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// IsZero reports whether no media reference is present.
func (m Media) IsZero() bool {
	return m.AudioURL == "" && m.VideoURL == ""
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session.
//
// Messages are append-only: content never changes after commit, and Status only
// moves forward through the stages defined in status.go. Messages are removed
// en masse when a session is cleared or deleted, never individually.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`
	Media   Media  `json:"media,omitzero"`

	// Delivery status
	Status Status `json:"status"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(sessionID string, role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Status:    StatusSending,
	}
}

// NewUserMessage creates a new user message in the sending state.
func NewUserMessage(sessionID, content string) *Message {
	return NewMessage(sessionID, RoleUser, content)
}

// NewAssistantMessage creates a committed assistant message. Assistant messages
// are only materialized once their stream finishes, so they are born past the
// sending stage.
func NewAssistantMessage(sessionID, content string, status Status) *Message {
	msg := NewMessage(sessionID, RoleAssistant, content)
	msg.Status = status
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", "")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// EstimateTokens gives a rough estimate of token count.
// Uses the approximation of ~4 characters per token.
func (m *Message) EstimateTokens() int {
	return (len(m.Content) + 3) / 4
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
