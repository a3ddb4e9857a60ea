// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for tutoring sessions and messages.
package model

// =============================================================================
// DELIVERY STATUS
// =============================================================================

// Status is the delivery-confirmation stage of a message, independent of its
// content. Stages form a total order and a message only ever moves forward.
type Status int

const (
	StatusSending Status = iota
	StatusSent
	StatusDelivered
	StatusRead
)

// String returns the wire/display name of the status.
func (s Status) String() string {
	switch s {
	case StatusSending:
		return "sending"
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusRead:
		return "read"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined stages.
func (s Status) Valid() bool {
	return s >= StatusSending && s <= StatusRead
}

// Next returns the stage that directly follows s. Calling Next on the final
// stage returns the final stage unchanged.
func (s Status) Next() Status {
	if s >= StatusRead {
		return StatusRead
	}
	return s + 1
}

// Before reports whether s is an earlier stage than other.
func (s Status) Before(other Status) bool {
	return s < other
}

// ParseStatus converts a stored status name back to a Status.
// Unknown names fall back to StatusDelivered so that replayed history from a
// previous run never renders as stuck in an in-flight stage.
func ParseStatus(name string) Status {
	switch name {
	case "sending":
		return StatusSending
	case "sent":
		return StatusSent
	case "delivered":
		return StatusDelivered
	case "read":
		return StatusRead
	default:
		return StatusDelivered
	}
}

// MarshalText implements encoding.TextMarshaler so Status persists as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}
