// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream accumulates an in-progress assistant response for one session.
package stream

import (
	"context"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// STREAM STATE
// =============================================================================

// State is the accumulation buffer for one session's active generation.
// All methods are safe for concurrent use: deltas arrive on the generation
// goroutine while cancellation comes from the store's operation handlers.
type State struct {
	mu        sync.Mutex
	sessionID string
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	buffer     strings.Builder
	active     bool
	cancelled  bool
	startTime  time.Time
	firstDelta time.Time
	deltaCount int
	cancelFunc context.CancelFunc
}

// New creates an active stream state for a session.
func New(sessionID string) *State {
	return &State{
		sessionID: sessionID,
		active:    true,
		startTime: time.Now(),
	}
}

// SessionID returns the owning session.
func (s *State) SessionID() string {
	return s.sessionID
}

// SetCancelFunc stores the context cancel for the generation request so a
// cooperative Cancel also tears down the transport.
func (s *State) SetCancelFunc(fn context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFunc = fn
}

// =============================================================================
// DELTA APPLICATION
// =============================================================================

// Append applies one delta verbatim to the buffer. Returns false when the
// stream is cancelled or finished, in which case the delta is discarded;
// deltas already in flight at cancellation time land here harmlessly.
func (s *State) Append(delta string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.cancelled {
		return false
	}
	if s.deltaCount == 0 {
		s.firstDelta = time.Now()
	}
	s.buffer.WriteString(delta)
	s.deltaCount++
	return true
}

// Content returns the cumulative buffer. Each applied delta re-renders the
// whole buffer so multi-chunk markdown constructs resolve once completed.
func (s *State) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.String()
}

// =============================================================================
// TERMINATION
// =============================================================================

// Cancel marks the stream cancelled and cancels the underlying request.
// Returns false if the stream had already finished. The buffered partial
// stays readable for the commit that follows.
func (s *State) Cancel() bool {
	s.mu.Lock()
	if !s.active || s.cancelled {
		s.mu.Unlock()
		return false
	}
	s.cancelled = true
	fn := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// Finish marks the stream inactive and returns the final buffer. Returns
// false if it was already finished; termination is applied exactly once.
func (s *State) Finish() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return "", false
	}
	s.active = false
	s.cancelFunc = nil
	return s.buffer.String(), true
}

// IsActive reports whether the stream is still accepting deltas or awaiting
// its terminal event.
func (s *State) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// IsCancelled reports whether cooperative cancellation was requested.
func (s *State) IsCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// =============================================================================
// STATISTICS
// =============================================================================

// DeltaCount returns how many deltas were applied.
func (s *State) DeltaCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deltaCount
}

// TTFT returns the time to first delta, zero before any delta arrived.
func (s *State) TTFT() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstDelta.IsZero() {
		return 0
	}
	return s.firstDelta.Sub(s.startTime)
}

// Elapsed returns time since the stream opened.
func (s *State) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startTime)
}
