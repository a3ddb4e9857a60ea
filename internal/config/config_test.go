// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Tutor.BaseURL == "" {
		t.Error("default BaseURL should be set")
	}
	if cfg.Conversation.ContextWindow != 20 {
		t.Errorf("ContextWindow = %d, want 20", cfg.Conversation.ContextWindow)
	}
	if cfg.Conversation.DeliveryDelayMs != 1200 {
		t.Errorf("DeliveryDelayMs = %d, want 1200", cfg.Conversation.DeliveryDelayMs)
	}
	if cfg.Speech.Language != "en-US" {
		t.Errorf("Language = %q, want en-US", cfg.Speech.Language)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[tutor]
base_url = "http://tutor.internal:9000"

[conversation]
context_window = 40

[speech]
language = "es-MX"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath error: %v", err)
	}

	if cfg.Tutor.BaseURL != "http://tutor.internal:9000" {
		t.Errorf("BaseURL = %q", cfg.Tutor.BaseURL)
	}
	if cfg.Conversation.ContextWindow != 40 {
		t.Errorf("ContextWindow = %d, want 40", cfg.Conversation.ContextWindow)
	}
	if cfg.Speech.Language != "es-MX" {
		t.Errorf("Language = %q, want es-MX", cfg.Speech.Language)
	}

	// Unset fields fall back to defaults
	if cfg.Tutor.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want default 30", cfg.Tutor.RequestsPerMinute)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want default dark", cfg.UI.Theme)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"conversation": {"context_window": 10}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath error: %v", err)
	}
	if cfg.Conversation.ContextWindow != 10 {
		t.Errorf("ContextWindow = %d, want 10", cfg.Conversation.ContextWindow)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Conversation.ContextWindow = 33
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML error: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath error: %v", err)
	}
	if loaded.Conversation.ContextWindow != 33 {
		t.Errorf("ContextWindow = %d, want 33", loaded.Conversation.ContextWindow)
	}
	if !loaded.UI.CompactMode {
		t.Error("CompactMode should survive the round trip")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero context window", func(c *Config) { c.Conversation.ContextWindow = 0 }, false},
		{"huge context window", func(c *Config) { c.Conversation.ContextWindow = 1000 }, false},
		{"negative delay", func(c *Config) { c.Conversation.DeliveryDelayMs = -1 }, false},
		{"zero delay ok", func(c *Config) { c.Conversation.DeliveryDelayMs = 0 }, true},
		{"bad language", func(c *Config) { c.Speech.Language = "not a tag!!" }, false},
		{"bad provider", func(c *Config) { c.Speech.Provider = "cloudmic" }, false},
		{"provider none ok", func(c *Config) { c.Speech.Provider = "none" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, false},
		{"bad rpm", func(c *Config) { c.Tutor.RequestsPerMinute = 0 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Errorf("Validate = %v, want nil", err)
			}
			if !tc.valid && err == nil {
				t.Error("Validate should reject this config")
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TUTORTUI_BASE_URL", "http://override:1234")
	t.Setenv("TUTORTUI_CONTEXT_WINDOW", "7")
	t.Setenv("TUTORTUI_LANGUAGE", "fr-FR")
	t.Setenv("TUTORTUI_SCRIPTED", "true")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Tutor.BaseURL != "http://override:1234" {
		t.Errorf("BaseURL = %q", cfg.Tutor.BaseURL)
	}
	if cfg.Conversation.ContextWindow != 7 {
		t.Errorf("ContextWindow = %d, want 7", cfg.Conversation.ContextWindow)
	}
	if cfg.Speech.Language != "fr-FR" {
		t.Errorf("Language = %q, want fr-FR", cfg.Speech.Language)
	}
	if !cfg.Tutor.Scripted {
		t.Error("Scripted should be enabled")
	}
}

func TestResolveDataDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/tmp/custom"

	dir, err := cfg.ResolveDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/custom" {
		t.Errorf("dir = %q, want /tmp/custom", dir)
	}

	cfg.Storage.DataDir = ""
	dir, err = cfg.ResolveDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir == "" {
		t.Error("empty DataDir should resolve to the config dir")
	}
}
