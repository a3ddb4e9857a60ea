// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connectivity tracks network reachability for the conversation core.
//
// The Monitor is a binary online/offline state machine driven by platform
// connectivity events (no polling). Going offline gates the send path; it
// never touches in-progress draft text, which is owned by the input surface.
// Coming back online lifts the gate but never retries anything automatically:
// retry is a user-initiated action, to avoid duplicate submissions.
package connectivity
