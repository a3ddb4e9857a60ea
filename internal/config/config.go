// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/jeranaias/tutor-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete application configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Tutor backend configuration
	Tutor TutorConfig `toml:"tutor" json:"tutor"`

	// Conversation behavior
	Conversation ConversationConfig `toml:"conversation" json:"conversation"`

	// Speech capture configuration
	Speech SpeechConfig `toml:"speech" json:"speech"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// TutorConfig contains tutoring backend configuration.
type TutorConfig struct {
	// BaseURL is the URL of the tutoring backend
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the timeout for non-streaming requests in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RequestsPerMinute throttles outgoing respond calls
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
	// Burst allows short bursts above the sustained rate
	Burst int `toml:"burst" json:"burst"`
	// Scripted runs against the built-in scripted generator instead of
	// the network backend. Demo and development use.
	Scripted bool `toml:"scripted" json:"scripted"`
}

// ConversationConfig contains conversation behavior configuration.
type ConversationConfig struct {
	// ContextWindow is the number of recent messages sent with each
	// request. Older messages are truncated oldest first.
	ContextWindow int `toml:"context_window" json:"context_window"`
	// DeliveryDelayMs is the sent-to-delivered pacing delay in
	// milliseconds for user message status ticks
	DeliveryDelayMs int `toml:"delivery_delay_ms" json:"delivery_delay_ms"`
	// MaxSessions limits stored sessions (0 = unlimited)
	MaxSessions int `toml:"max_sessions" json:"max_sessions"`
}

// SpeechConfig contains speech capture configuration.
type SpeechConfig struct {
	// Language is the BCP-47 tag for speech recognition (e.g. "en-US")
	Language string `toml:"language" json:"language"`
	// Provider selects the capture backend: "system" or "none"
	Provider string `toml:"provider" json:"provider"`
}

// StorageConfig contains on-disk state configuration.
type StorageConfig struct {
	// DataDir is the root directory for sessions, index, and logs
	// (empty = ~/.tutortui)
	DataDir string `toml:"data_dir" json:"data_dir"`
	// IndexEnabled controls the message search index
	IndexEnabled bool `toml:"index_enabled" json:"index_enabled"`
	// WatchEnabled re-indexes session files rewritten by other processes
	WatchEnabled bool `toml:"watch_enabled" json:"watch_enabled"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowStatusTicks displays per-message delivery status markers
	ShowStatusTicks bool `toml:"show_status_ticks" json:"show_status_ticks"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// CodeStyle is the chroma style used for code block highlighting
	CodeStyle string `toml:"code_style" json:"code_style"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Tutor: TutorConfig{
			BaseURL:           "http://127.0.0.1:8420",
			TimeoutSecs:       30,
			RequestsPerMinute: 30,
			Burst:             5,
			Scripted:          false,
		},

		Conversation: ConversationConfig{
			ContextWindow:   20,
			DeliveryDelayMs: 1200,
			MaxSessions:     100,
		},

		Speech: SpeechConfig{
			Language: "en-US",
			Provider: "system",
		},

		Storage: StorageConfig{
			DataDir:      "",
			IndexEnabled: true,
			WatchEnabled: false,
		},

		UI: UIConfig{
			Theme:           "dark",
			ShowStatusTicks: true,
			CompactMode:     false,
			CodeStyle:       "monokai",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tutortui"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ResolveDataDir returns the effective data directory for the config.
func (c *Config) ResolveDataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err == nil {
				return finishLoad(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err == nil {
				return finishLoad(cfg)
			}
		}
	}

	return finishLoad(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// finishLoad applies overrides, defaults, and validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	fmt.Fprintln(file, "# tutor-tui configuration file")
	fmt.Fprintln(file, "# Generated by tutor-tui - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Tutor backend
	if c.Tutor.BaseURL != "" {
		if _, err := url.Parse(c.Tutor.BaseURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "tutor.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}
	if c.Tutor.TimeoutSecs < 1 || c.Tutor.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "tutor.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Tutor.TimeoutSecs),
		})
	}
	if c.Tutor.RequestsPerMinute < 1 || c.Tutor.RequestsPerMinute > 600 {
		errs = append(errs, ValidationError{
			Field:   "tutor.requests_per_minute",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Tutor.RequestsPerMinute),
		})
	}

	// Conversation
	if c.Conversation.ContextWindow < 1 || c.Conversation.ContextWindow > 200 {
		errs = append(errs, ValidationError{
			Field:   "conversation.context_window",
			Message: fmt.Sprintf("must be 1-200, got %d", c.Conversation.ContextWindow),
		})
	}
	if c.Conversation.DeliveryDelayMs < 0 || c.Conversation.DeliveryDelayMs > 60000 {
		errs = append(errs, ValidationError{
			Field:   "conversation.delivery_delay_ms",
			Message: fmt.Sprintf("must be 0-60000, got %d", c.Conversation.DeliveryDelayMs),
		})
	}
	if c.Conversation.MaxSessions < 0 {
		errs = append(errs, ValidationError{
			Field:   "conversation.max_sessions",
			Message: "must be non-negative",
		})
	}

	// Speech
	if c.Speech.Language != "" {
		if _, err := language.Parse(c.Speech.Language); err != nil {
			errs = append(errs, ValidationError{
				Field:   "speech.language",
				Message: fmt.Sprintf("invalid BCP-47 tag '%s'", c.Speech.Language),
			})
		}
	}
	validProviders := map[string]bool{"system": true, "none": true}
	if !validProviders[strings.ToLower(c.Speech.Provider)] {
		errs = append(errs, ValidationError{
			Field:   "speech.provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: system, none", c.Speech.Provider),
		})
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Tutor.BaseURL == "" {
		c.Tutor.BaseURL = defaults.Tutor.BaseURL
	}
	if c.Tutor.TimeoutSecs == 0 {
		c.Tutor.TimeoutSecs = defaults.Tutor.TimeoutSecs
	}
	if c.Tutor.RequestsPerMinute == 0 {
		c.Tutor.RequestsPerMinute = defaults.Tutor.RequestsPerMinute
	}
	if c.Tutor.Burst == 0 {
		c.Tutor.Burst = defaults.Tutor.Burst
	}

	if c.Conversation.ContextWindow == 0 {
		c.Conversation.ContextWindow = defaults.Conversation.ContextWindow
	}
	if c.Conversation.DeliveryDelayMs == 0 {
		c.Conversation.DeliveryDelayMs = defaults.Conversation.DeliveryDelayMs
	}
	if c.Conversation.MaxSessions == 0 {
		c.Conversation.MaxSessions = defaults.Conversation.MaxSessions
	}

	if c.Speech.Language == "" {
		c.Speech.Language = defaults.Speech.Language
	}
	if c.Speech.Provider == "" {
		c.Speech.Provider = defaults.Speech.Provider
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.CodeStyle == "" {
		c.UI.CodeStyle = defaults.UI.CodeStyle
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TUTORTUI_BASE_URL: overrides tutor.base_url
//   - TUTORTUI_SCRIPTED: set to "1" or "true" to use the scripted generator
//   - TUTORTUI_CONTEXT_WINDOW: overrides conversation.context_window
//   - TUTORTUI_LANGUAGE: overrides speech.language
//   - TUTORTUI_DATA_DIR: overrides storage.data_dir
//   - TUTORTUI_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if baseURL := os.Getenv("TUTORTUI_BASE_URL"); baseURL != "" {
		c.Tutor.BaseURL = baseURL
	}

	if scripted := os.Getenv("TUTORTUI_SCRIPTED"); scripted != "" {
		c.Tutor.Scripted = scripted == "1" || strings.ToLower(scripted) == "true"
	}

	if window := os.Getenv("TUTORTUI_CONTEXT_WINDOW"); window != "" {
		if n, err := strconv.Atoi(window); err == nil {
			c.Conversation.ContextWindow = n
		}
	}

	if lang := os.Getenv("TUTORTUI_LANGUAGE"); lang != "" {
		c.Speech.Language = lang
	}

	if dataDir := os.Getenv("TUTORTUI_DATA_DIR"); dataDir != "" {
		c.Storage.DataDir = dataDir
	}

	if theme := os.Getenv("TUTORTUI_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}
