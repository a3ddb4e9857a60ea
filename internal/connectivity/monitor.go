// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connectivity tracks network reachability for the conversation core.
package connectivity

import (
	"sync"
	"time"
)

// =============================================================================
// STATE
// =============================================================================

// State is a snapshot of network reachability.
type State struct {
	Online        bool
	LastChangedAt time.Time
}

// =============================================================================
// MONITOR
// =============================================================================

// Listener receives reachability transitions. Callbacks run outside the
// monitor's lock and must not block for long; they execute on the goroutine
// that delivered the platform event.
type Listener func(online bool)

// Monitor observes online/offline transitions and answers the one question
// the store asks before sending: are we reachable right now.
//
// There is exactly one Monitor per process, created at startup and injected
// into everything that needs it.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	changedAt time.Time
	listeners []Listener
}

// NewMonitor creates a monitor with the given initial reachability.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online:    online,
		changedAt: time.Now(),
	}
}

// Apply records a platform connectivity event. Repeated events with the same
// value are no-ops and do not bump the transition timestamp.
func (m *Monitor) Apply(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.changedAt = time.Now()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
}

// IsOnline reports current reachability.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Current returns a snapshot of the reachability state.
func (m *Monitor) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Online: m.online, LastChangedAt: m.changedAt}
}

// Subscribe registers a listener for future transitions. No replay of the
// current state is performed; callers read Current first if they need it.
func (m *Monitor) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// StatusBadge returns a short badge for the UI, empty when online.
func (m *Monitor) StatusBadge() string {
	if m.IsOnline() {
		return ""
	}
	return "[OFFLINE]"
}
