// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lifecycle owns per-message delivery status and its timed transitions.
//
// The status machine is sending -> sent -> delivered -> read. sending->sent is
// immediate on store acceptance; sent->delivered fires after a fixed delay
// modeling confirmation latency; delivered->read arrives from the presentation
// layer when the message becomes visible.
//
// Transitions are monotonic and idempotent. Re-applying the reached stage is a
// silent no-op; a backward or skipping request returns ErrInvalidTransition and
// is logged rather than treated as fatal - delivery status is best-effort UX,
// not a correctness-critical channel.
//
// Pending timers are cancellation tokens tied to message and session lifetime:
// clearing or deleting a session cancels its timers so no callback outlives
// the data it would mutate.
package lifecycle
