// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream accumulates an in-progress assistant response for one session.
//
// A State is created when a generation request is issued and destroyed when
// the stream completes or is cancelled and its buffer has been committed to a
// message. At most one State is active per session; deltas for different
// sessions interleave freely because each session owns an independent State.
//
// Cancellation is cooperative: Cancel sets a flag that Append checks, so a
// delta already in flight from the collaborator at cancellation time is
// discarded rather than applied. The partial buffer is never discarded; the
// store commits it as the assistant message content.
package stream
