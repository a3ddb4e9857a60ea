// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - TutorConfig: Backend endpoint and request throttling
//   - ConversationConfig: Context window and status pacing
//   - SpeechConfig: Capture language and provider
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TUTORTUI_*)
//   - ~/.tutortui/config.toml
//   - ~/.tutortui/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	url := cfg.Tutor.BaseURL
//	window := cfg.Conversation.ContextWindow
package config
