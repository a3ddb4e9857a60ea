// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech wraps a platform speech recognition capability.
package speech

import (
	"errors"
	"sync"
	"testing"

	"golang.org/x/text/language"
)

// =============================================================================
// FAKE CAPABILITY
// =============================================================================

// fakeRecording lets tests drive transcript events by hand.
type fakeRecording struct {
	ev      Events
	stopped bool
}

func (r *fakeRecording) Stop() { r.stopped = true }

type fakeCapability struct {
	mu        sync.Mutex
	available bool
	startErr  error
	rec       *fakeRecording
	starts    int
}

func (c *fakeCapability) Available() bool { return c.available }

func (c *fakeCapability) Start(tag language.Tag, ev Events) (Recording, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	if c.startErr != nil {
		return nil, c.startErr
	}
	c.rec = &fakeRecording{ev: ev}
	return c.rec, nil
}

// emitInterim pushes an interim transcript as the platform would.
func (c *fakeCapability) emitInterim(text string) {
	c.mu.Lock()
	rec := c.rec
	c.mu.Unlock()
	rec.ev.OnInterim(text)
}

func (c *fakeCapability) emitError(err error) {
	c.mu.Lock()
	rec := c.rec
	c.mu.Unlock()
	rec.ev.OnError(err)
}

// collector gathers adapter events for assertions.
type collector struct {
	mu       sync.Mutex
	interims []string
	finals   []string
	errs     []error
}

func (c *collector) events() Events {
	return Events{
		OnInterim: func(t string) { c.mu.Lock(); c.interims = append(c.interims, t); c.mu.Unlock() },
		OnFinal:   func(t string) { c.mu.Lock(); c.finals = append(c.finals, t); c.mu.Unlock() },
		OnError:   func(e error) { c.mu.Lock(); c.errs = append(c.errs, e); c.mu.Unlock() },
	}
}

// =============================================================================
// ADAPTER TESTS
// =============================================================================

func TestNewAdapter_InvalidLanguage(t *testing.T) {
	_, err := NewAdapter(&fakeCapability{available: true}, "not a tag!!")
	if !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("NewAdapter = %v, want ErrInvalidLanguage", err)
	}
}

func TestStart_Unsupported(t *testing.T) {
	a, err := NewAdapter(&fakeCapability{available: false}, "en-US")
	if err != nil {
		t.Fatal(err)
	}
	if a.IsSupported() {
		t.Error("IsSupported should be false")
	}
	if err := a.Start(Events{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Start = %v, want ErrUnsupported", err)
	}
}

func TestStart_NilCapability(t *testing.T) {
	a, err := NewAdapter(nil, "en-US")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Start(Events{}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Start = %v, want ErrUnsupported", err)
	}
}

func TestCapture_InterimThenStopEmitsFinal(t *testing.T) {
	cap := &fakeCapability{available: true}
	a, _ := NewAdapter(cap, "en-US")
	var got collector

	if err := a.Start(got.events()); err != nil {
		t.Fatal(err)
	}
	if !a.Active() {
		t.Fatal("adapter should be active after Start")
	}

	cap.emitInterim("what is")
	cap.emitInterim("what is photosynthesis")

	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}

	got.mu.Lock()
	defer got.mu.Unlock()
	if len(got.interims) != 2 {
		t.Errorf("interims = %v, want 2 entries", got.interims)
	}
	if len(got.finals) != 1 || got.finals[0] != "what is photosynthesis" {
		t.Errorf("finals = %v, want the accumulated transcript", got.finals)
	}
	if a.Active() {
		t.Error("adapter should be stopped after Stop")
	}
	if !cap.rec.stopped {
		t.Error("underlying recording should be stopped")
	}
}

func TestCapture_ExclusiveAcrossAdapters(t *testing.T) {
	capA := &fakeCapability{available: true}
	capB := &fakeCapability{available: true}
	a, _ := NewAdapter(capA, "en-US")
	b, _ := NewAdapter(capB, "en-GB")

	if err := a.Start(Events{}); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()

	// One recording system-wide: a second adapter is refused too.
	if err := b.Start(Events{}); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("second Start = %v, want ErrAlreadyRecording", err)
	}
	if err := a.Start(Events{}); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("re-Start = %v, want ErrAlreadyRecording", err)
	}
}

func TestCapture_MicReleasedAfterStop(t *testing.T) {
	cap := &fakeCapability{available: true}
	a, _ := NewAdapter(cap, "en-US")

	if err := a.Start(Events{}); err != nil {
		t.Fatal(err)
	}
	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}

	// Mic must be free again for the next capture.
	if err := a.Start(Events{}); err != nil {
		t.Errorf("Start after Stop = %v, want nil", err)
	}
	a.Stop()
}

func TestCapture_ErrorStopsAdapter(t *testing.T) {
	cap := &fakeCapability{available: true}
	a, _ := NewAdapter(cap, "en-US")
	var got collector

	if err := a.Start(got.events()); err != nil {
		t.Fatal(err)
	}

	permission := errors.New("permission denied")
	cap.emitError(permission)

	if a.Active() {
		t.Error("adapter should stop on capture error")
	}
	got.mu.Lock()
	if len(got.errs) != 1 || !errors.Is(got.errs[0], permission) {
		t.Errorf("errs = %v, want the permission error", got.errs)
	}
	if len(got.finals) != 0 {
		t.Errorf("finals = %v, want none after error", got.finals)
	}
	got.mu.Unlock()

	// No automatic retry, but the mic is released for a manual one.
	if err := a.Start(got.events()); err != nil {
		t.Errorf("manual restart = %v, want nil", err)
	}
	a.Stop()
}

func TestStop_NotRecording(t *testing.T) {
	a, _ := NewAdapter(&fakeCapability{available: true}, "en-US")
	if err := a.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop = %v, want ErrNotRecording", err)
	}
}

func TestStart_PropagatesPlatformError(t *testing.T) {
	boom := errors.New("device busy")
	cap := &fakeCapability{available: true, startErr: boom}
	a, _ := NewAdapter(cap, "en-US")

	if err := a.Start(Events{}); !errors.Is(err, boom) {
		t.Errorf("Start = %v, want platform error", err)
	}
	if a.Active() {
		t.Error("failed Start should leave adapter inactive")
	}

	// Mic must not be leaked by the failed start.
	cap.startErr = nil
	if err := a.Start(Events{}); err != nil {
		t.Errorf("Start after failure = %v, want nil", err)
	}
	a.Stop()
}
