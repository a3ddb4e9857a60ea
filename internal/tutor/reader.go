// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tutor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// EVENT READER
// =============================================================================

// EventReader handles line-by-line JSON parsing of the respond stream.
type EventReader struct {
	reader *bufio.Reader
}

// NewEventReader creates a new event reader from an io.Reader.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls the callback for each event.
// Blocks until the stream is complete or the context is cancelled.
// An EventError line terminates the stream with ErrGenerationFailed.
func (r *EventReader) Process(ctx context.Context, callback EventCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			ev, err := r.readEvent()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			if ev == nil {
				continue
			}

			callback(*ev)
			switch ev.Type {
			case EventComplete:
				return nil
			case EventError:
				if ev.Message != "" {
					return &ClientError{Type: ErrTypeGeneration, Message: ev.Message}
				}
				return ErrGenerationFailed
			}
		}
	}
}

// readEvent reads and parses a single line from the stream.
func (r *EventReader) readEvent() (*Event, error) {
	line, err := r.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		// Try to process the last line even on EOF
		if len(line) == 0 {
			return nil, err
		}
	}

	// Skip empty lines
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, nil
	}

	var ev Event
	if err := json.Unmarshal([]byte(trimmed), &ev); err != nil {
		// Skip malformed lines
		return nil, nil
	}

	return &ev, nil
}
