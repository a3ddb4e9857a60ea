// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
	// styles are usable immediately, no extra init step
	if out := theme.UserBubble.Render("hi"); out == "" {
		t.Error("UserBubble render produced nothing")
	}
	if out := theme.TutorBubble.Render("hi"); out == "" {
		t.Error("TutorBubble render produced nothing")
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("size = %dx%d, want 120x40", theme.Width, theme.Height)
	}
}

func TestModeStyle(t *testing.T) {
	theme := NewTheme()
	tests := []struct {
		mode string
		want string
	}{
		{"text", theme.ModeText.Render("x")},
		{"voice", theme.ModeVoice.Render("x")},
		{"video", theme.ModeVideo.Render("x")},
		{"unknown", theme.ModeText.Render("x")},
	}
	for _, tt := range tests {
		if got := theme.ModeStyle(tt.mode).Render("x"); got != tt.want {
			t.Errorf("ModeStyle(%q) rendered %q, want %q", tt.mode, got, tt.want)
		}
	}
}
