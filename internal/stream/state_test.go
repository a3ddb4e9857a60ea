// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"testing"
	"time"
)

func TestAppend_ConcatenatesInOrder(t *testing.T) {
	s := New("sess_1")

	for _, delta := range []string{"The ", "water ", "cycle."} {
		if !s.Append(delta) {
			t.Fatalf("Append(%q) rejected on active stream", delta)
		}
	}

	if got := s.Content(); got != "The water cycle." {
		t.Errorf("Content = %q, want concatenation in receipt order", got)
	}
	if s.DeltaCount() != 3 {
		t.Errorf("DeltaCount = %d, want 3", s.DeltaCount())
	}
}

func TestCancel_DiscardsLateDeltas(t *testing.T) {
	s := New("sess_1")
	s.Append("Step 1: eva")

	if !s.Cancel() {
		t.Fatal("Cancel on active stream should succeed")
	}

	// A delta already in flight arrives after cancellation: discarded.
	if s.Append("poration") {
		t.Error("Append after Cancel should be rejected")
	}
	if got := s.Content(); got != "Step 1: eva" {
		t.Errorf("Content = %q, partial must be preserved exactly", got)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	s := New("sess_1")
	if !s.Cancel() {
		t.Fatal("first Cancel should succeed")
	}
	if s.Cancel() {
		t.Error("second Cancel should report already terminated")
	}
}

func TestCancel_InvokesCancelFunc(t *testing.T) {
	s := New("sess_1")
	called := false
	s.SetCancelFunc(func() { called = true })

	s.Cancel()
	if !called {
		t.Error("Cancel should cancel the underlying request context")
	}
}

func TestFinish_ReturnsBufferOnce(t *testing.T) {
	s := New("sess_1")
	s.Append("hello")

	content, ok := s.Finish()
	if !ok || content != "hello" {
		t.Errorf("Finish = (%q, %v), want (hello, true)", content, ok)
	}
	if s.IsActive() {
		t.Error("stream should be inactive after Finish")
	}

	if _, ok := s.Finish(); ok {
		t.Error("second Finish should report already finished")
	}
	if s.Append("x") {
		t.Error("Append after Finish should be rejected")
	}
}

func TestTTFT_SetOnFirstDelta(t *testing.T) {
	s := New("sess_1")
	if s.TTFT() != 0 {
		t.Error("TTFT should be zero before the first delta")
	}
	time.Sleep(time.Millisecond)
	s.Append("x")
	if s.TTFT() <= 0 {
		t.Error("TTFT should be positive after the first delta")
	}
}
