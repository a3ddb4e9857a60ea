// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"context"
	"strings"
	"time"
)

// =============================================================================
// SCRIPTED GENERATOR
// =============================================================================

// Scripted is an in-process Generator that replays canned responses,
// splitting each into word-by-word deltas. Used by tests and by the
// demo mode when no backend is configured.
type Scripted struct {
	// Responses are consumed in order. When exhausted, Fallback is used.
	Responses []string

	// Fallback is the response used once Responses runs out.
	Fallback string

	// Delay between deltas. Zero means no artificial pacing.
	Delay time.Duration

	// FailWith, when non-nil, makes every Generate call fail after
	// emitting EmitBeforeFail deltas.
	FailWith       error
	EmitBeforeFail int

	// AudioURL and VideoURL are attached to the completion event when
	// the request mode calls for them.
	AudioURL string
	VideoURL string

	next int
}

// Generate implements Generator.
func (s *Scripted) Generate(ctx context.Context, req Request, callback EventCallback) error {
	text := s.Fallback
	if s.next < len(s.Responses) {
		text = s.Responses[s.next]
		s.next++
	}
	if text == "" {
		text = "Let's work through that together."
	}

	words := strings.SplitAfter(text, " ")
	for i, w := range words {
		if s.FailWith != nil && i >= s.EmitBeforeFail {
			return s.FailWith
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		callback(Event{Type: EventDelta, Delta: w})
		if s.Delay > 0 {
			select {
			case <-time.After(s.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if s.FailWith != nil {
		return s.FailWith
	}

	done := Event{Type: EventComplete}
	switch req.Mode {
	case "voice":
		done.AudioURL = s.AudioURL
	case "video":
		done.AudioURL = s.AudioURL
		done.VideoURL = s.VideoURL
	}
	callback(done)
	return nil
}
