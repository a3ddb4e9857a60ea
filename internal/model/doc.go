// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for tutoring sessions and messages.
//
// This package defines the core domain types used throughout the application
// for representing conversation sessions, messages, delivery status, and the
// active response mode.
//
// # Key Types
//
//   - Session: One persistent conversation thread with its own history
//   - Message: Single message with role, content, delivery status and media
//   - Status: Ordered delivery-confirmation stages (sending..read)
//   - ResponseMode: The active input/output modality (text, voice, video)
//
// # Usage
//
// Create a session and append a message:
//
//	sess := model.NewSession(model.OwnerStudent)
//	msg := model.NewUserMessage(sess.ID, "What is the water cycle?")
//	msg.Status = model.StatusSent
package model
