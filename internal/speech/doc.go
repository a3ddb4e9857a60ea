// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech wraps a platform continuous speech recognition capability
// behind a capability-checked adapter.
//
// The platform capability is injected at construction and probed exactly once;
// the core never touches platform globals. An unsupported platform permanently
// disables capture for the process lifetime rather than retrying.
//
// The microphone is the one truly exclusive resource in the system: only one
// recording may be active process-wide, across every session and adapter
// instance. A second Start while one is active fails with ErrAlreadyRecording.
//
// Capture emits interim transcripts (non-final, may be revised) followed by a
// final transcript. Stop forces completion: whatever transcript has
// accumulated is emitted as final. Capture errors stop the adapter and are
// surfaced; the adapter never retries on its own.
package speech
