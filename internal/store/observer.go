// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/jeranaias/tutor-tui/internal/markdown"
	"github.com/jeranaias/tutor-tui/internal/model"
)

// =============================================================================
// OBSERVER
// =============================================================================

// Observer receives typed notifications as store state changes.
//
// Notifications are delivered outside the store mutex, in the order the
// mutations were applied. Implementations that need to touch the store
// from a callback must do so asynchronously.
type Observer interface {
	// MessageAppended fires when a message joins a session transcript.
	MessageAppended(sessionID string, msg model.Message)

	// MessageStatusChanged fires on every applied status transition.
	MessageStatusChanged(sessionID, messageID string, status model.Status)

	// StreamDelta fires per applied delta with the cumulative buffer
	// re-rendered from scratch, so partially streamed markdown
	// constructs resolve as their closing syntax arrives.
	StreamDelta(sessionID string, nodes []markdown.Node, raw string)

	// StreamCommitted fires when a stream terminates and its buffer is
	// committed as an assistant message. Cancelled streams commit their
	// partial the same way.
	StreamCommitted(sessionID string, msg model.Message)

	// StreamFailed fires on mid-stream transport or generation failure,
	// after any partial content was committed. No synthetic error text
	// is appended to the transcript.
	StreamFailed(sessionID string, err error)

	// SessionsChanged fires when the session list or its order changes.
	SessionsChanged()

	// ConnectivityChanged mirrors connectivity.Monitor transitions.
	ConnectivityChanged(online bool)
}

// NopObserver implements Observer with no-ops. Embed it to implement
// only the notifications you care about.
type NopObserver struct{}

func (NopObserver) MessageAppended(string, model.Message)                {}
func (NopObserver) MessageStatusChanged(string, string, model.Status)   {}
func (NopObserver) StreamDelta(string, []markdown.Node, string)         {}
func (NopObserver) StreamCommitted(string, model.Message)               {}
func (NopObserver) StreamFailed(string, error)                          {}
func (NopObserver) SessionsChanged()                                    {}
func (NopObserver) ConnectivityChanged(bool)                            {}
