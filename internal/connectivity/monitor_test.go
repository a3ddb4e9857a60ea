// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connectivity tracks network reachability for the conversation core.
package connectivity

import (
	"testing"
	"time"
)

func TestMonitor_InitialState(t *testing.T) {
	m := NewMonitor(true)
	if !m.IsOnline() {
		t.Error("monitor created online should report online")
	}

	m = NewMonitor(false)
	if m.IsOnline() {
		t.Error("monitor created offline should report offline")
	}
}

func TestMonitor_Apply(t *testing.T) {
	m := NewMonitor(true)

	m.Apply(false)
	if m.IsOnline() {
		t.Error("should be offline after Apply(false)")
	}

	m.Apply(true)
	if !m.IsOnline() {
		t.Error("should be online after Apply(true)")
	}
}

func TestMonitor_DuplicateEventsDoNotBumpTimestamp(t *testing.T) {
	m := NewMonitor(true)

	m.Apply(false)
	first := m.Current().LastChangedAt

	time.Sleep(5 * time.Millisecond)
	m.Apply(false) // duplicate

	if got := m.Current().LastChangedAt; !got.Equal(first) {
		t.Errorf("duplicate event bumped LastChangedAt: %v != %v", got, first)
	}
}

func TestMonitor_SubscribeReceivesTransitions(t *testing.T) {
	m := NewMonitor(true)

	var got []bool
	m.Subscribe(func(online bool) {
		got = append(got, online)
	})

	m.Apply(false)
	m.Apply(false) // duplicate, no callback
	m.Apply(true)

	want := []bool{false, true}
	if len(got) != len(want) {
		t.Fatalf("listener called %d times, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMonitor_StatusBadge(t *testing.T) {
	m := NewMonitor(true)
	if badge := m.StatusBadge(); badge != "" {
		t.Errorf("online badge = %q, want empty", badge)
	}

	m.Apply(false)
	if badge := m.StatusBadge(); badge != "[OFFLINE]" {
		t.Errorf("offline badge = %q, want [OFFLINE]", badge)
	}
}
