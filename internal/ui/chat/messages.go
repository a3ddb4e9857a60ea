// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tutor-tui/internal/markdown"
	"github.com/jeranaias/tutor-tui/internal/model"
)

// =============================================================================
// STORE NOTIFICATION MESSAGES
// =============================================================================

// MessageAppendedMsg signals a new message in a session.
type MessageAppendedMsg struct {
	SessionID string
	Message   model.Message
}

// StatusChangedMsg signals a delivery status promotion.
type StatusChangedMsg struct {
	SessionID string
	MessageID string
	Status    model.Status
}

// StreamDeltaMsg carries the cumulative re-render of an in-progress
// response.
type StreamDeltaMsg struct {
	SessionID string
	Nodes     []markdown.Node
	Raw       string
}

// StreamCommittedMsg signals a finished response entering the
// transcript.
type StreamCommittedMsg struct {
	SessionID string
	Message   model.Message
}

// StreamFailedMsg signals a generation failure. Any partial content
// was committed first via StreamCommittedMsg.
type StreamFailedMsg struct {
	SessionID string
	Err       error
}

// SessionsChangedMsg signals the session list changed (create, delete,
// reorder).
type SessionsChangedMsg struct{}

// ConnectivityMsg signals an online/offline transition.
type ConnectivityMsg struct {
	Online bool
}

// TranscriptMsg carries a final speech capture transcript into the
// input field.
type TranscriptMsg struct {
	Text  string
	Final bool
}

// CaptureErrorMsg signals a speech capture failure.
type CaptureErrorMsg struct {
	Err error
}

// =============================================================================
// OBSERVER BRIDGE
// =============================================================================

// Sender is the part of tea.Program the bridge needs. Narrowed for
// tests.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards store notifications onto the Bubble Tea loop. It is
// safe to call from any goroutine; Program.Send serializes delivery.
//
// The store takes its observer at construction, before the tea.Program
// exists, so the bridge starts unwired. Notifications arriving before
// SetSender are dropped; the model rebuilds from the store on its
// first resize anyway.
type Bridge struct {
	mu     sync.Mutex
	sender Sender
}

// NewBridge creates a bridge. Pass nil and wire the program in later
// with SetSender.
func NewBridge(sender Sender) *Bridge {
	return &Bridge{sender: sender}
}

// SetSender wires the running program in.
func (b *Bridge) SetSender(sender Sender) {
	b.mu.Lock()
	b.sender = sender
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	sender := b.sender
	b.mu.Unlock()
	if sender != nil {
		sender.Send(msg)
	}
}

func (b *Bridge) MessageAppended(sessionID string, msg model.Message) {
	b.send(MessageAppendedMsg{SessionID: sessionID, Message: msg})
}

func (b *Bridge) MessageStatusChanged(sessionID, messageID string, status model.Status) {
	b.send(StatusChangedMsg{SessionID: sessionID, MessageID: messageID, Status: status})
}

func (b *Bridge) StreamDelta(sessionID string, nodes []markdown.Node, raw string) {
	b.send(StreamDeltaMsg{SessionID: sessionID, Nodes: nodes, Raw: raw})
}

func (b *Bridge) StreamCommitted(sessionID string, msg model.Message) {
	b.send(StreamCommittedMsg{SessionID: sessionID, Message: msg})
}

func (b *Bridge) StreamFailed(sessionID string, err error) {
	b.send(StreamFailedMsg{SessionID: sessionID, Err: err})
}

func (b *Bridge) SessionsChanged() {
	b.send(SessionsChangedMsg{})
}

func (b *Bridge) ConnectivityChanged(online bool) {
	b.send(ConnectivityMsg{Online: online})
}
