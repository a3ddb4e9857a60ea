// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar renders the bottom status line: current mode, connectivity,
// session context, and keyboard shortcuts.
type StatusBar struct {
	Width        int
	Mode         model.ResponseMode
	Offline      bool
	Recording    bool
	Streaming    bool
	SessionTitle string
	SessionCount int

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		Mode:  model.ModeText,
		theme: theme,
	}
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar sized to the current width.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow shows just the essentials.
func (s *StatusBar) viewNarrow() string {
	parts := []string{s.renderModeBadge()}
	if s.Offline {
		parts = append(parts, s.theme.OfflineBadge.Render("OFFLINE"))
	}
	if s.Recording {
		parts = append(parts, s.theme.ErrorStyle.Render("● REC"))
	}
	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, "  "))
}

// viewWide adds session context and shortcuts.
func (s *StatusBar) viewWide() string {
	left := []string{s.renderModeBadge()}
	if s.Offline {
		left = append(left, s.theme.OfflineBadge.Render("OFFLINE"))
	}
	if s.Recording {
		left = append(left, s.theme.ErrorStyle.Render("● REC"))
	}
	if s.Streaming {
		left = append(left, s.theme.ThinkingText.Render("responding..."))
	}
	if s.SessionTitle != "" {
		title := runewidth.Truncate(s.SessionTitle, 30, "...")
		left = append(left, s.theme.SessionMeta.Render(title))
	}

	leftStr := strings.Join(left, "  ")
	rightStr := s.renderShortcuts()

	gap := s.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(s.Width).Render(
		leftStr + strings.Repeat(" ", gap) + rightStr,
	)
}

// renderModeBadge shows the active response mode.
func (s *StatusBar) renderModeBadge() string {
	name := strings.ToUpper(s.Mode.String())
	return s.theme.ModeStyle(s.Mode.String()).Render(name)
}

// renderShortcuts shows the key bindings that matter right now.
func (s *StatusBar) renderShortcuts() string {
	bindings := [][2]string{
		{"^N", "new"},
		{"^S", "sessions"},
		{"^T", "mode"},
	}
	if s.Streaming {
		bindings = append(bindings, [2]string{"esc", "stop"})
	}
	bindings = append(bindings, [2]string{"^C", "quit"})

	var parts []string
	for _, b := range bindings {
		parts = append(parts,
			s.theme.ShortcutKey.Render(b[0])+" "+s.theme.ShortcutDesc.Render(b[1]))
	}
	return strings.Join(parts, "  ")
}

// SessionCountLabel returns "n sessions" for the session list header.
func (s *StatusBar) SessionCountLabel() string {
	if s.SessionCount == 1 {
		return "1 session"
	}
	return toStr(s.SessionCount) + " sessions"
}
