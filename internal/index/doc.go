// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search over committed messages.
//
// The index is a SQLite database with an FTS5 table mirroring message
// content. It is strictly derived state: the session documents on disk
// are the source of truth, and the index can be rebuilt from them at
// any time. Rows are added as messages commit and removed when their
// session is deleted or cleared.
//
// An optional fsnotify watcher re-indexes session files rewritten by
// other processes, so two app instances sharing a data dir stay
// searchable.
package index
