// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/ui/components"
)

// chromeHeight is the vertical space used by everything that is not
// the transcript viewport: header, error line, input area, status bar.
const chromeHeight = 7

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "starting..."
	}
	if m.view == viewSessions {
		return m.renderSessionPicker()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderErrorLine())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderHeader shows the app title and the current session.
func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Tutor")
	subtitle := ""
	if sess, ok := m.store.CurrentSession(); ok {
		subtitle = "  " + m.theme.HeaderSubtitle.Render(sess.DisplayTitle())
	}
	if m.modes != nil && m.modes.AvatarActive() {
		subtitle += "  " + m.theme.InfoStyle.Render("◉ avatar")
	}
	return m.theme.Container.Render(title + subtitle)
}

// renderTranscript renders every committed message plus the streaming
// bubble, ready for the viewport.
func (m *Model) renderTranscript() string {
	sid := m.currentSessionID()
	if sid == "" {
		return m.renderWelcome()
	}

	msgs := m.store.Messages(sid)
	if len(msgs) == 0 && !m.streaming {
		return m.renderWelcome()
	}

	var parts []string
	for i := range msgs {
		bubble := components.NewMessageBubble(&msgs[i], m.theme)
		bubble.SetWidth(m.width)
		bubble.ShowTicks = m.showTicks && msgs[i].Role == model.RoleUser
		bubble.CodeStyle = m.codeStyle
		parts = append(parts, bubble.View())
	}

	if m.streaming {
		parts = append(parts, m.renderStreamingBubble())
	}

	return strings.Join(parts, "\n\n")
}

// renderStreamingBubble shows the in-progress response, re-rendered
// from the cumulative markdown on every delta.
func (m *Model) renderStreamingBubble() string {
	if m.streamRaw == "" {
		return m.spin.View() + " " + m.theme.ThinkingText.Render("tutor is thinking...")
	}
	msg := model.NewAssistantMessage(m.currentSessionID(), m.streamRaw, model.StatusDelivered)
	bubble := components.NewMessageBubble(msg, m.theme)
	bubble.SetWidth(m.width)
	bubble.Streaming = true
	bubble.CodeStyle = m.codeStyle
	return bubble.View()
}

// renderWelcome fills an empty transcript.
func (m *Model) renderWelcome() string {
	lines := []string{
		"",
		m.theme.HeaderTitle.Render("  Welcome!"),
		"",
		m.theme.HeaderSubtitle.Render("  Ask a question to start a new session."),
		"",
		m.theme.ShortcutDesc.Render("  Enter sends, Ctrl+S lists sessions, Ctrl+T cycles the response mode."),
	}
	return strings.Join(lines, "\n")
}

// renderErrorLine shows the last error, or the full key binding help
// when toggled on.
func (m *Model) renderErrorLine() string {
	if m.showHelp {
		var groups []string
		for _, group := range m.keyMap.FullHelp() {
			var parts []string
			for _, b := range group {
				parts = append(parts,
					m.theme.ShortcutKey.Render(b.Help().Key)+" "+
						m.theme.ShortcutDesc.Render(b.Help().Desc))
			}
			groups = append(groups, strings.Join(parts, "  "))
		}
		return "  " + strings.Join(groups, "   ")
	}
	if m.lastError == "" {
		return ""
	}
	return m.theme.ErrorStyle.Render("  ✗ " + m.lastError)
}

// renderInput shows the prompt and the text input, with a recording
// indicator replacing the prompt while the microphone is live.
func (m *Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("❯ ")
	if m.recording {
		prompt = m.theme.ErrorStyle.Render("● ")
	}
	return m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View())
}

// renderStatusBar shows mode, connectivity, and shortcuts.
func (m *Model) renderStatusBar() string {
	m.statusBar.Mode = m.mode()
	m.statusBar.Offline = m.offline
	m.statusBar.Recording = m.recording
	m.statusBar.Streaming = m.streaming
	m.statusBar.SessionCount = len(m.sessionList)
	if sess, ok := m.store.CurrentSession(); ok {
		m.statusBar.SessionTitle = sess.DisplayTitle()
	} else {
		m.statusBar.SessionTitle = ""
	}
	return m.statusBar.View()
}

// =============================================================================
// SESSION PICKER
// =============================================================================

// renderSessionPicker shows the session list, most recently active
// first.
func (m *Model) renderSessionPicker() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("  Sessions"))
	b.WriteString("  ")
	b.WriteString(m.theme.SessionMeta.Render(m.statusBar.SessionCountLabel()))
	b.WriteString("\n\n")

	if len(m.sessionList) == 0 {
		b.WriteString(m.theme.SessionMeta.Render("  No sessions yet. Ctrl+N starts one."))
	}

	currentID := m.currentSessionID()
	for i, sess := range m.sessionList {
		marker := "  "
		if sess.ID == currentID {
			marker = "• "
		}
		line := marker + sess.DisplayTitle() + "  " +
			m.theme.SessionMeta.Render(sess.LastActivityAt.Format("Jan 2 15:04"))

		style := m.theme.SessionItem
		if i == m.sessionCursor {
			style = m.theme.SessionItemSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := []string{
		m.theme.ShortcutKey.Render("Enter") + m.theme.ShortcutDesc.Render(" open"),
		m.theme.ShortcutKey.Render("x") + m.theme.ShortcutDesc.Render(" delete"),
		m.theme.ShortcutKey.Render("C-n") + m.theme.ShortcutDesc.Render(" new"),
		m.theme.ShortcutKey.Render("Esc") + m.theme.ShortcutDesc.Render(" back"),
	}
	b.WriteString("  " + strings.Join(help, "  "))
	return lipgloss.NewStyle().Width(m.width).Render(b.String())
}
