// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode selects the active input modality for the next exchange.
package mode

import (
	"errors"
	"testing"

	"golang.org/x/text/language"

	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/speech"
)

// stubRecording tracks whether the platform capture was stopped.
type stubRecording struct{ stopped *bool }

func (r stubRecording) Stop() { *r.stopped = true }

type stubCapability struct {
	available bool
	stopped   bool
}

func (c *stubCapability) Available() bool { return c.available }

func (c *stubCapability) Start(tag language.Tag, ev speech.Events) (speech.Recording, error) {
	return stubRecording{stopped: &c.stopped}, nil
}

func newTestAdapter(t *testing.T, available bool) (*speech.Adapter, *stubCapability) {
	t.Helper()
	cap := &stubCapability{available: available}
	a, err := speech.NewAdapter(cap, "en-US")
	if err != nil {
		t.Fatal(err)
	}
	return a, cap
}

// =============================================================================
// CONTROLLER TESTS
// =============================================================================

func TestController_StartsInText(t *testing.T) {
	a, _ := newTestAdapter(t, true)
	c := NewController(a)

	if c.Current() != model.ModeText {
		t.Errorf("initial mode = %v, want text", c.Current())
	}
	if c.AvatarActive() {
		t.Error("avatar should be inactive in text mode")
	}
}

func TestController_UnconditionalTransitions(t *testing.T) {
	a, _ := newTestAdapter(t, true)
	c := NewController(a)

	sequence := []model.ResponseMode{
		model.ModeVoice, model.ModeVideo, model.ModeText,
		model.ModeVideo, model.ModeVoice, model.ModeText,
	}
	for _, m := range sequence {
		if err := c.Set(m); err != nil {
			t.Fatalf("Set(%v) = %v", m, err)
		}
		if c.Current() != m {
			t.Fatalf("Current = %v, want %v", c.Current(), m)
		}
	}
}

func TestController_RejectsUnknownMode(t *testing.T) {
	a, _ := newTestAdapter(t, true)
	c := NewController(a)

	if err := c.Set(model.ResponseMode("hologram")); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Set(unknown) = %v, want ErrUnknownMode", err)
	}
	if c.Current() != model.ModeText {
		t.Error("rejected transition should not change mode")
	}
}

func TestController_FlushOnExitStopsRecording(t *testing.T) {
	a, cap := newTestAdapter(t, true)
	c := NewController(a)

	c.Set(model.ModeVoice)
	if err := a.Start(speech.Events{}); err != nil {
		t.Fatal(err)
	}

	c.Set(model.ModeText)
	if a.Active() {
		t.Error("leaving voice must stop the active recording")
	}
	if !cap.stopped {
		t.Error("underlying platform capture should have been stopped")
	}
}

func TestController_VoiceToVideoKeepsRecording(t *testing.T) {
	a, _ := newTestAdapter(t, true)
	c := NewController(a)

	c.Set(model.ModeVoice)
	if err := a.Start(speech.Events{}); err != nil {
		t.Fatal(err)
	}
	defer a.Stop()

	// Video shares the capture path; switching must not interrupt it.
	c.Set(model.ModeVideo)
	if !a.Active() {
		t.Error("voice -> video must keep the recording alive")
	}
	if !c.AvatarActive() {
		t.Error("avatar should be active in video mode")
	}
}

func TestController_CaptureAvailable(t *testing.T) {
	a, _ := newTestAdapter(t, false)
	c := NewController(a)
	if c.CaptureAvailable() {
		t.Error("unsupported platform should report capture unavailable")
	}

	c = NewController(nil)
	if c.CaptureAvailable() {
		t.Error("nil adapter should report capture unavailable")
	}
}
