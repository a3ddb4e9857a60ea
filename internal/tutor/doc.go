// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tutor provides the client for the tutoring backend.
//
// The backend exposes a single streaming endpoint: the client posts the
// conversation context and receives newline-delimited JSON events, one
// per line. Delta events carry incremental response text; the terminal
// event carries completion metadata, including media URLs when the
// requested response mode is voice or video.
//
// The package also contains a scripted generator that replays canned
// responses without a network, used by tests and the offline demo.
package tutor
