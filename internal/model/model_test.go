// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for tutoring sessions and messages.
package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestStatus_Ordering(t *testing.T) {
	order := []Status{StatusSending, StatusSent, StatusDelivered, StatusRead}

	for i := 1; i < len(order); i++ {
		if !order[i-1].Before(order[i]) {
			t.Errorf("%v should be before %v", order[i-1], order[i])
		}
		if order[i].Before(order[i-1]) {
			t.Errorf("%v should not be before %v", order[i], order[i-1])
		}
	}
}

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from Status
		want Status
	}{
		{StatusSending, StatusSent},
		{StatusSent, StatusDelivered},
		{StatusDelivered, StatusRead},
		{StatusRead, StatusRead}, // terminal stage stays put
	}

	for _, tt := range tests {
		if got := tt.from.Next(); got != tt.want {
			t.Errorf("Next(%v) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestStatus_StringRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusSending, StatusSent, StatusDelivered, StatusRead} {
		if got := ParseStatus(s.String()); got != s {
			t.Errorf("ParseStatus(%q) = %v, want %v", s.String(), got, s)
		}
	}

	// Unknown names must not resurrect in-flight stages
	if got := ParseStatus("bogus"); got != StatusDelivered {
		t.Errorf("ParseStatus(bogus) = %v, want delivered", got)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("sess_1", "Hello")

	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("message ID should start with 'msg_', got %q", msg.ID)
	}
	if msg.SessionID != "sess_1" {
		t.Errorf("SessionID = %q, want sess_1", msg.SessionID)
	}
	if msg.Role != RoleUser {
		t.Errorf("Role = %v, want user", msg.Role)
	}
	if msg.Status != StatusSending {
		t.Errorf("new user message Status = %v, want sending", msg.Status)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("sess_1", "The water cycle.", StatusDelivered)

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %v, want assistant", msg.Role)
	}
	if msg.Status != StatusDelivered {
		t.Errorf("Status = %v, want delivered", msg.Status)
	}
	if msg.Content != "The water cycle." {
		t.Errorf("Content = %q", msg.Content)
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"newlines flattened", "a\nb\r\nc", 10, "a b c"},
		{"unicode", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewUserMessage("s", tt.content)
			if got := msg.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestMedia_IsZero(t *testing.T) {
	if !(Media{}).IsZero() {
		t.Error("empty Media should be zero")
	}
	if (Media{AudioURL: "https://cdn/a.mp3"}).IsZero() {
		t.Error("Media with audio should not be zero")
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestNewSession(t *testing.T) {
	sess := NewSession(OwnerStudent)

	if !strings.HasPrefix(sess.ID, "sess_") {
		t.Errorf("session ID should start with 'sess_', got %q", sess.ID)
	}
	if sess.OwnerRole != OwnerStudent {
		t.Errorf("OwnerRole = %v, want student", sess.OwnerRole)
	}
	if sess.CreatedAt.IsZero() || sess.LastActivityAt.IsZero() {
		t.Error("timestamps should be set")
	}
	if sess.DisplayTitle() != "New session" {
		t.Errorf("DisplayTitle = %q, want default", sess.DisplayTitle())
	}
}

func TestSession_Touch(t *testing.T) {
	sess := NewSession(OwnerStudent)
	before := sess.LastActivityAt

	time.Sleep(5 * time.Millisecond)
	sess.Touch()

	if !sess.LastActivityAt.After(before) {
		t.Error("Touch should advance LastActivityAt")
	}
}

// =============================================================================
// RESPONSE MODE TESTS
// =============================================================================

func TestResponseMode(t *testing.T) {
	if !ModeText.Valid() || !ModeVoice.Valid() || !ModeVideo.Valid() {
		t.Error("all defined modes should be valid")
	}
	if ResponseMode("hologram").Valid() {
		t.Error("unknown mode should be invalid")
	}
	if ModeText.UsesCapture() {
		t.Error("text mode should not use capture")
	}
	if !ModeVoice.UsesCapture() || !ModeVideo.UsesCapture() {
		t.Error("voice and video modes should use capture")
	}
}
