// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main conversation view for the tutor TUI.

The chat package implements a terminal tutoring interface using the
Bubble Tea framework: a scrolling transcript of student and tutor
messages, a single-line input, and a status bar showing the response
mode and connectivity.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model. It holds no
conversation state of its own; the store owns that. The model keeps
presentation state only: the viewport, the input field, which overlay
is open, and the raw text of the response currently streaming.

## Observer Bridge (messages.go)

The store notifies the UI through its Observer interface from its own
goroutines. Bridge converts each notification into a Bubble Tea
message delivered through Program.Send, so all rendering decisions
happen on the Bubble Tea loop.

## Update Loop (update.go)

Keyboard handling, window resizes, and the store notification messages.
Submitting input hands the draft to the store; a rejected submit
(offline, stream already running) leaves the draft in the input field.

## View Rendering (view.go)

Header, transcript with role-styled bubbles and delivery ticks, the
streaming bubble with live markdown re-rendering, the session picker
overlay, and the status bar.
*/
package chat
