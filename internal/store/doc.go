// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store is the in-memory source of truth for sessions, messages,
// and in-progress response streams.
//
// All mutations are serialized under one mutex: user submits from the
// UI, stream events arriving on generation goroutines, delivery timer
// fires, and session management all funnel through the Store, so
// observers see a single consistent order of events per session.
//
// The Store owns orchestration only. Status transition rules live in
// lifecycle, stream buffering in stream, persistence in storage, and
// the presentation layer subscribes through the Observer interface
// rather than reaching into state.
package store
