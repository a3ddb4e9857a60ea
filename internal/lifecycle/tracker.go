// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lifecycle owns per-message delivery status and its timed transitions.
package lifecycle

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/tutor-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidTransition is returned for backward or stage-skipping requests.
// Callers log and ignore it; it is never fatal.
var ErrInvalidTransition = errors.New("invalid status transition")

// =============================================================================
// TRACKER
// =============================================================================

// DefaultDeliveryDelay models the confirmation latency between a message being
// accepted and the counterpart acknowledging it.
const DefaultDeliveryDelay = 1200 * time.Millisecond

// ElapsedFunc is invoked when a delivery timer fires. The owner (the store)
// serializes the resulting Advance call with its other mutations.
type ElapsedFunc func(sessionID, messageID string)

// Tracker applies status transitions and schedules the timed sent->delivered
// promotion. Transition math itself is not locked here: messages are mutated
// only under the store's serialization, and the Tracker's own mutex guards
// just the timer table.
type Tracker struct {
	mu        sync.Mutex
	delay     time.Duration
	onElapsed ElapsedFunc
	timers    map[string]*time.Timer            // message id -> pending timer
	bySession map[string]map[string]struct{}    // session id -> pending message ids
	logf      func(format string, args ...any)
}

// NewTracker creates a tracker. onElapsed may be nil until SetElapsedFunc is
// called; timers that fire with no handler are dropped.
func NewTracker(delay time.Duration, onElapsed ElapsedFunc) *Tracker {
	if delay <= 0 {
		delay = DefaultDeliveryDelay
	}
	return &Tracker{
		delay:     delay,
		onElapsed: onElapsed,
		timers:    make(map[string]*time.Timer),
		bySession: make(map[string]map[string]struct{}),
		logf:      log.Printf,
	}
}

// SetElapsedFunc installs the timer-fire handler. Used by the store after
// construction to break the creation cycle between store and tracker.
func (t *Tracker) SetElapsedFunc(fn ElapsedFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onElapsed = fn
}

// SetLogf overrides the transition logger, mainly for tests.
func (t *Tracker) SetLogf(logf func(format string, args ...any)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logf = logf
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Advance moves msg to the requested stage.
//
// Re-applying the current stage is a no-op. Any request that is not the
// immediate next stage fails with ErrInvalidTransition; status never moves
// backward and never skips a stage.
func (t *Tracker) Advance(msg *model.Message, to model.Status) error {
	if !to.Valid() {
		return t.reject(msg, to)
	}
	if to == msg.Status {
		return nil // idempotent re-apply
	}
	if to != msg.Status.Next() {
		return t.reject(msg, to)
	}

	msg.Status = to

	// A promotion past delivered makes any pending delivery timer moot.
	if to >= model.StatusDelivered {
		t.CancelMessage(msg.SessionID, msg.ID)
	}
	return nil
}

// reject logs and returns ErrInvalidTransition.
func (t *Tracker) reject(msg *model.Message, to model.Status) error {
	t.mu.Lock()
	logf := t.logf
	t.mu.Unlock()
	if logf != nil {
		logf("lifecycle: ignored transition %s -> %s for %s", msg.Status, to, msg.ID)
	}
	return ErrInvalidTransition
}

// =============================================================================
// DELIVERY TIMERS
// =============================================================================

// ScheduleDelivered arms the sent->delivered timer for a message. Scheduling
// twice for the same message resets the timer.
func (t *Tracker) ScheduleDelivered(sessionID, messageID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.timers[messageID]; ok {
		old.Stop()
	}

	t.timers[messageID] = time.AfterFunc(t.delay, func() {
		t.fire(sessionID, messageID)
	})

	ids, ok := t.bySession[sessionID]
	if !ok {
		ids = make(map[string]struct{})
		t.bySession[sessionID] = ids
	}
	ids[messageID] = struct{}{}
}

// fire removes the timer entry and hands the elapsed event to the owner.
func (t *Tracker) fire(sessionID, messageID string) {
	t.mu.Lock()
	delete(t.timers, messageID)
	if ids, ok := t.bySession[sessionID]; ok {
		delete(ids, messageID)
		if len(ids) == 0 {
			delete(t.bySession, sessionID)
		}
	}
	fn := t.onElapsed
	t.mu.Unlock()

	if fn != nil {
		fn(sessionID, messageID)
	}
}

// CancelMessage stops the pending timer for one message, if any.
func (t *Tracker) CancelMessage(sessionID, messageID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[messageID]; ok {
		timer.Stop()
		delete(t.timers, messageID)
	}
	if ids, ok := t.bySession[sessionID]; ok {
		delete(ids, messageID)
		if len(ids) == 0 {
			delete(t.bySession, sessionID)
		}
	}
}

// CancelSession stops every pending timer belonging to a session. Called when
// a session is cleared or deleted so destroyed messages leak no callbacks.
func (t *Tracker) CancelSession(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for messageID := range t.bySession[sessionID] {
		if timer, ok := t.timers[messageID]; ok {
			timer.Stop()
			delete(t.timers, messageID)
		}
	}
	delete(t.bySession, sessionID)
}

// PendingCount returns the number of armed timers. Used by tests and the
// status line.
func (t *Tracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
