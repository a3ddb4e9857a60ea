// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the tutor TUI.
//
// Components are stateless renderers: each takes the shared Theme plus the
// data it displays and produces a styled string. The chat model composes
// them into the final frame; none of them talk to the store directly.
package components
