// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lifecycle owns per-message delivery status and its timed transitions.
package lifecycle

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/tutor-tui/internal/model"
)

func newQuietTracker(delay time.Duration, fn ElapsedFunc) *Tracker {
	t := NewTracker(delay, fn)
	t.SetLogf(func(string, ...any) {})
	return t
}

// =============================================================================
// TRANSITION TESTS
// =============================================================================

func TestAdvance_ForwardSteps(t *testing.T) {
	tr := newQuietTracker(time.Hour, nil)
	msg := model.NewUserMessage("sess_1", "hi")

	steps := []model.Status{model.StatusSent, model.StatusDelivered, model.StatusRead}
	for _, to := range steps {
		if err := tr.Advance(msg, to); err != nil {
			t.Fatalf("Advance(%v) = %v, want nil", to, err)
		}
		if msg.Status != to {
			t.Fatalf("Status = %v, want %v", msg.Status, to)
		}
	}
}

func TestAdvance_IdempotentReapply(t *testing.T) {
	tr := newQuietTracker(time.Hour, nil)
	msg := model.NewUserMessage("sess_1", "hi")
	tr.Advance(msg, model.StatusSent)

	if err := tr.Advance(msg, model.StatusSent); err != nil {
		t.Errorf("re-applying reached stage = %v, want nil no-op", err)
	}
	if msg.Status != model.StatusSent {
		t.Errorf("Status changed on re-apply: %v", msg.Status)
	}
}

func TestAdvance_RejectsSkipsAndBackward(t *testing.T) {
	tr := newQuietTracker(time.Hour, nil)

	tests := []struct {
		name string
		from model.Status
		to   model.Status
	}{
		{"skip sending to delivered", model.StatusSending, model.StatusDelivered},
		{"skip sending to read", model.StatusSending, model.StatusRead},
		{"backward delivered to sent", model.StatusDelivered, model.StatusSent},
		{"backward read to sending", model.StatusRead, model.StatusSending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := model.NewUserMessage("sess_1", "hi")
			msg.Status = tt.from

			err := tr.Advance(msg, tt.to)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Advance = %v, want ErrInvalidTransition", err)
			}
			if msg.Status != tt.from {
				t.Errorf("rejected transition mutated status: %v", msg.Status)
			}
		})
	}
}

func TestAdvance_MonotonicOverTime(t *testing.T) {
	tr := newQuietTracker(time.Hour, nil)
	msg := model.NewUserMessage("sess_1", "hi")

	// Random walk of requests; status must never decrease.
	requests := []model.Status{
		model.StatusSent, model.StatusSending, model.StatusDelivered,
		model.StatusSent, model.StatusRead, model.StatusDelivered,
	}
	prev := msg.Status
	for _, to := range requests {
		tr.Advance(msg, to)
		if msg.Status.Before(prev) {
			t.Fatalf("status moved backward: %v -> %v", prev, msg.Status)
		}
		prev = msg.Status
	}
}

// =============================================================================
// TIMER TESTS
// =============================================================================

func TestScheduleDelivered_Fires(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	tr := newQuietTracker(10*time.Millisecond, func(sessionID, messageID string) {
		mu.Lock()
		fired = append(fired, sessionID+"/"+messageID)
		mu.Unlock()
	})

	tr.ScheduleDelivered("sess_1", "msg_a")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != "sess_1/msg_a" {
		t.Errorf("fired = %v, want one event for sess_1/msg_a", fired)
	}
	if tr.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after fire, want 0", tr.PendingCount())
	}
}

func TestCancelSession_StopsTimers(t *testing.T) {
	var mu sync.Mutex
	count := 0

	tr := newQuietTracker(20*time.Millisecond, func(string, string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	tr.ScheduleDelivered("sess_1", "msg_a")
	tr.ScheduleDelivered("sess_1", "msg_b")
	tr.ScheduleDelivered("sess_2", "msg_c")

	tr.CancelSession("sess_1")
	if tr.PendingCount() != 1 {
		t.Errorf("PendingCount = %d after CancelSession, want 1", tr.PendingCount())
	}

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("fired %d times, want 1 (only sess_2 survives)", count)
	}
}

func TestAdvance_PastDeliveredCancelsTimer(t *testing.T) {
	tr := newQuietTracker(time.Hour, nil)
	msg := model.NewUserMessage("sess_1", "hi")
	msg.Status = model.StatusSent

	tr.ScheduleDelivered(msg.SessionID, msg.ID)
	if tr.PendingCount() != 1 {
		t.Fatal("timer should be pending")
	}

	tr.Advance(msg, model.StatusDelivered)
	if tr.PendingCount() != 0 {
		t.Error("reaching delivered should cancel the pending timer")
	}
}

func TestScheduleDelivered_ResetReplacesTimer(t *testing.T) {
	tr := newQuietTracker(time.Hour, nil)

	tr.ScheduleDelivered("sess_1", "msg_a")
	tr.ScheduleDelivered("sess_1", "msg_a")

	if tr.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1 after rescheduling same message", tr.PendingCount())
	}
}
