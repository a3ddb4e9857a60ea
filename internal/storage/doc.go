// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists session transcripts to disk.
//
// Each session is one JSON document keyed by session id, written
// atomically so a crash never leaves a half-written transcript. Loading
// is forgiving: a corrupt or unreadable document is skipped and the
// caller sees the sessions that survived, never an error that would
// block startup.
//
// # Key Types
//
//   - SessionStore: directory-backed store, one file per session
//   - SessionDoc: serialized session metadata plus its messages
//
// # Usage
//
// Create a store and save a session:
//
//	store, err := storage.NewSessionStoreWithDir(dataDir)
//	err = store.Save(&storage.SessionDoc{Session: sess, Messages: msgs})
//
// Load everything on startup:
//
//	docs, err := store.LoadAll()
//
// # Storage Location
//
// Sessions are stored in ~/.tutortui/sessions/ as JSON files.
package storage
