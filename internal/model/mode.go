// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for tutoring sessions and messages.
package model

// =============================================================================
// RESPONSE MODE
// =============================================================================

// ResponseMode is the active input/output modality for the current session's
// next exchange. It is global to the input surface, not per-message.
type ResponseMode string

const (
	ModeText  ResponseMode = "text"
	ModeVoice ResponseMode = "voice"
	ModeVideo ResponseMode = "video"
)

// String returns the string representation of the mode.
func (m ResponseMode) String() string {
	return string(m)
}

// Valid reports whether m is one of the defined modes.
func (m ResponseMode) Valid() bool {
	switch m {
	case ModeText, ModeVoice, ModeVideo:
		return true
	}
	return false
}

// UsesCapture reports whether the mode drives microphone capture.
// Video composes capture with avatar playback; the capture path is shared
// with voice.
func (m ResponseMode) UsesCapture() bool {
	return m == ModeVoice || m == ModeVideo
}
