// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tutor TUI.
//
// The package exposes an adaptive color palette and a Theme struct holding
// every lipgloss style the interface uses. Colors are declared with
// lipgloss.AdaptiveColor so light and dark terminals both render legibly
// without configuration.
//
// A Theme is created once at startup with NewTheme, which probes the
// terminal's color profile through termenv, and is then shared by every
// component. Styles are value types; components may derive width-adjusted
// copies without affecting the shared theme.
package styles
