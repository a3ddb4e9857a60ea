// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech wraps a platform speech recognition capability.
package speech

import (
	"errors"
	"sync"

	"golang.org/x/text/language"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnsupported is returned when the platform capability is absent.
	// Detected once at construction and cached; never retried.
	ErrUnsupported = errors.New("speech capture is not supported on this platform")

	// ErrAlreadyRecording is returned when a Start arrives while a recording
	// is active anywhere in the process. Usage error, rejected immediately.
	ErrAlreadyRecording = errors.New("a speech capture is already recording")

	// ErrNotRecording is returned by Stop when nothing is being captured.
	ErrNotRecording = errors.New("no active speech capture")

	// ErrInvalidLanguage is returned for an unparseable BCP 47 language tag.
	ErrInvalidLanguage = errors.New("invalid speech language tag")
)

// =============================================================================
// CAPABILITY CONTRACT
// =============================================================================

// Events carries transcript callbacks out of a recording. Callbacks are
// invoked on the platform's event goroutine and must not block.
type Events struct {
	// OnInterim delivers a non-final transcript that may still be revised.
	// Each call carries the full transcript so far, not a delta.
	OnInterim func(text string)

	// OnFinal delivers the completed transcript. Emitted exactly once.
	OnFinal func(text string)

	// OnError reports a capture failure (permission denial, device loss).
	OnError func(err error)
}

// Recording is a live capture handle.
type Recording interface {
	// Stop ends the capture immediately. Not cooperative: the microphone is
	// the caller's exclusive resource to release.
	Stop()
}

// Capability is the injected platform speech recognition provider.
type Capability interface {
	// Available reports whether continuous recognition exists on this
	// platform. Queried once by NewAdapter.
	Available() bool

	// Start begins capture in the given language, delivering transcripts
	// through ev.
	Start(tag language.Tag, ev Events) (Recording, error)
}

// =============================================================================
// EXCLUSIVE MICROPHONE GUARD
// =============================================================================

// Process-wide microphone ownership. One recording at a time, full stop.
var (
	micMu   sync.Mutex
	micHeld bool
)

func tryAcquireMic() bool {
	micMu.Lock()
	defer micMu.Unlock()
	if micHeld {
		return false
	}
	micHeld = true
	return true
}

func releaseMic() {
	micMu.Lock()
	defer micMu.Unlock()
	micHeld = false
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter is the capability-checked capture interface handed to the mode
// controller. Voice and video modes share one adapter instance; video adds a
// presentation concern only, not a second capture path.
type Adapter struct {
	mu        sync.Mutex
	cap       Capability
	supported bool // probed once at construction
	lang      language.Tag

	active    bool
	finalSent bool
	interim   string // latest full interim transcript
	rec       Recording
	events    Events // consumer callbacks
}

// NewAdapter builds an adapter for the injected capability and validates the
// BCP 47 language tag. The support probe happens here, once.
func NewAdapter(provider Capability, languageTag string) (*Adapter, error) {
	tag, err := language.Parse(languageTag)
	if err != nil {
		return nil, ErrInvalidLanguage
	}
	return &Adapter{
		cap:       provider,
		supported: provider != nil && provider.Available(),
		lang:      tag,
	}, nil
}

// IsSupported reports the cached capability probe.
func (a *Adapter) IsSupported() bool {
	return a.supported
}

// Language returns the capture language tag.
func (a *Adapter) Language() language.Tag {
	return a.lang
}

// Active reports whether a recording is currently running.
func (a *Adapter) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Start begins capture, delivering transcripts through ev.
//
// Fails with ErrUnsupported on platforms without the capability and with
// ErrAlreadyRecording when any recording is active process-wide.
func (a *Adapter) Start(ev Events) error {
	if !a.supported {
		return ErrUnsupported
	}

	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		return ErrAlreadyRecording
	}
	if !tryAcquireMic() {
		a.mu.Unlock()
		return ErrAlreadyRecording
	}

	a.active = true
	a.finalSent = false
	a.interim = ""
	a.events = ev
	a.mu.Unlock()

	rec, err := a.cap.Start(a.lang, Events{
		OnInterim: a.handleInterim,
		OnFinal:   a.handleFinal,
		OnError:   a.handleError,
	})
	if err != nil {
		a.mu.Lock()
		a.active = false
		a.mu.Unlock()
		releaseMic()
		return err
	}

	a.mu.Lock()
	a.rec = rec
	a.mu.Unlock()
	return nil
}

// Stop forces completion. The transcript accumulated so far is emitted as
// final if the platform has not already finalized.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return ErrNotRecording
	}
	rec := a.rec
	a.mu.Unlock()

	if rec != nil {
		rec.Stop()
	}

	// The platform may emit its own final during Stop; handleFinal dedupes.
	a.handleFinal(a.snapshot())
	return nil
}

// snapshot returns the latest interim transcript.
func (a *Adapter) snapshot() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interim
}

// =============================================================================
// EVENT PLUMBING
// =============================================================================

func (a *Adapter) handleInterim(text string) {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.interim = text
	fn := a.events.OnInterim
	a.mu.Unlock()

	if fn != nil {
		fn(text)
	}
}

func (a *Adapter) handleFinal(text string) {
	a.mu.Lock()
	if !a.active || a.finalSent {
		a.mu.Unlock()
		return
	}
	a.finalSent = true
	a.active = false
	a.rec = nil
	fn := a.events.OnFinal
	a.mu.Unlock()

	releaseMic()
	if fn != nil {
		fn(text)
	}
}

func (a *Adapter) handleError(err error) {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.active = false
	a.finalSent = true
	a.rec = nil
	fn := a.events.OnError
	a.mu.Unlock()

	releaseMic()
	if fn != nil {
		fn(err)
	}
}
