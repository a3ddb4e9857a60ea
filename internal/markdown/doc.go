// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown transforms raw markdown text into a flat sequence of
// structured nodes.
//
// The transform is pure and stateless: the same input always yields the same
// node sequence and nothing is mutated. It is invoked against the cumulative
// streaming buffer on every flush, so it must tolerate in-progress constructs
// (an unterminated code fence, a dangling bold marker) by treating them as
// plain text until later chunks complete them.
//
// Rendering is idempotent: Render(Reserialize(Render(s))) == Render(s).
//
// Terminal presentation (colors, word wrap) is not this package's concern;
// the UI layers render node-free markdown through glamour directly.
package markdown
