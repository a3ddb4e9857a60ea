// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import "context"

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is one turn of conversation context sent to the backend.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request is the body posted to the respond endpoint.
type Request struct {
	// SessionID identifies the conversation on the backend.
	SessionID string `json:"session_id"`

	// Messages is the bounded context window, oldest first. The final
	// entry is the user turn being answered.
	Messages []Message `json:"messages"`

	// Mode is the requested response mode: "text", "voice", or "video".
	Mode string `json:"mode"`
}

// EventType discriminates streamed events.
type EventType string

const (
	// EventDelta carries an incremental fragment of response text.
	EventDelta EventType = "delta"

	// EventComplete terminates the stream. Media URLs are set when the
	// requested mode produced audio or video.
	EventComplete EventType = "complete"

	// EventError terminates the stream with a backend-reported failure.
	EventError EventType = "error"
)

// Event is one line of the NDJSON response stream.
type Event struct {
	Type     EventType `json:"type"`
	Delta    string    `json:"delta,omitempty"`
	AudioURL string    `json:"audio_url,omitempty"`
	VideoURL string    `json:"video_url,omitempty"`
	Message  string    `json:"message,omitempty"` // error detail on EventError
}

// EventCallback is called for each event received during streaming.
// Events are delivered synchronously in arrival order.
type EventCallback func(ev Event)

// Generator produces a streamed tutor response for a request.
//
// Generate blocks until the stream completes or fails. On context
// cancellation it returns the context error; callers that cancelled
// deliberately treat that as a clean stop, not a failure.
type Generator interface {
	Generate(ctx context.Context, req Request, callback EventCallback) error
}
