// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the plain-terminal REPL for the tutor.
//
// When stdout is not an interactive terminal, or the user passes
// --repl, the full Bubble Tea interface is skipped in favor of a
// readline-style loop: liner supplies history and line editing,
// glamour renders the tutor's markdown once each response completes,
// and deltas are echoed as they stream so the wait is visible.
//
// The REPL drives the same store as the TUI. Slash commands cover
// session management, mode switching, and transcript search.
package cli
