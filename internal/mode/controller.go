// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode selects the active input modality for the next exchange.
package mode

import (
	"errors"
	"sync"

	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/speech"
)

// ErrUnknownMode is returned for a mode outside {text, voice, video}.
var ErrUnknownMode = errors.New("unknown response mode")

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller tracks the active response mode and owns the flush-on-exit rule
// for the shared speech adapter.
type Controller struct {
	mu      sync.Mutex
	current model.ResponseMode
	capture *speech.Adapter // shared by voice and video; may be nil in text-only builds
}

// NewController starts in text mode with the shared capture adapter.
func NewController(capture *speech.Adapter) *Controller {
	return &Controller{
		current: model.ModeText,
		capture: capture,
	}
}

// Current returns the active mode.
func (c *Controller) Current() model.ResponseMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set switches to the requested mode. Transitions are user-initiated and
// unconditional; the only side effect is stopping a live recording when the
// target mode no longer drives capture.
func (c *Controller) Set(target model.ResponseMode) error {
	if !target.Valid() {
		return ErrUnknownMode
	}

	c.mu.Lock()
	prev := c.current
	c.current = target
	capture := c.capture
	c.mu.Unlock()

	if prev.UsesCapture() && !target.UsesCapture() && capture != nil && capture.Active() {
		// Flush-on-exit: the forced Stop emits the accumulated transcript
		// as final before the mode change takes effect for input routing.
		capture.Stop()
	}
	return nil
}

// Capture returns the shared speech adapter, nil when capture is unavailable.
func (c *Controller) Capture() *speech.Adapter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture
}

// AvatarActive reports whether the avatar presentation surface should be
// shown. True only in video mode; capture handling is identical to voice.
func (c *Controller) AvatarActive() bool {
	return c.Current() == model.ModeVideo
}

// CaptureAvailable reports whether the platform supports speech capture at
// all. Voice and video stay selectable as modes, but the UI disables their
// record affordance when this is false.
func (c *Controller) CaptureAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil && c.capture.IsSupported()
}
