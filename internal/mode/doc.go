// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode selects the active input modality for the next exchange.
//
// The controller is a small state machine over text, voice and video. User
// transitions are unconditional, with one cleanup rule: leaving voice or
// video while a capture is recording stops that recording first, so no
// orphaned microphone session survives the switch.
//
// Video does not get its own capture path. It composes the same speech
// adapter voice uses with an avatar presentation surface; the difference is
// a rendering concern only.
package mode
