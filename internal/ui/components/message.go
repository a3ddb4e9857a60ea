// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tutor-tui/internal/markdown"
	"github.com/jeranaias/tutor-tui/internal/model"
	"github.com/jeranaias/tutor-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// Status tick glyphs shown next to student messages.
const (
	tickSending   = "○"
	tickSent      = "✓"
	tickDelivered = "✓✓"
)

// MessageBubble renders one transcript message.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool
	ShowTicks     bool
	Streaming     bool
	CodeStyle     string
	theme         *styles.Theme
}

// NewMessageBubble creates a message bubble with display defaults.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowTicks:     true,
		CodeStyle:     DefaultCodeStyle,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message == nil {
		return ""
	}
	if b.Message.Role == model.RoleUser {
		return b.renderUserBubble()
	}
	return b.renderTutorBubble()
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.Content
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	footer := roleStyle.Render("you")
	if b.ShowTimestamp {
		footer += " " + b.theme.SessionMeta.Render(formatTime(b.Message.Timestamp))
	}
	if b.ShowTicks {
		footer += " " + b.renderTicks()
	}

	return bubble + "\n" + footer
}

// renderTicks shows the delivery pipeline stage of a student message.
// A double tick turns green only once the tutor side has read it.
func (b *MessageBubble) renderTicks() string {
	switch b.Message.Status {
	case model.StatusSending:
		return b.theme.TickPending.Render(tickSending)
	case model.StatusSent:
		return b.theme.TickPending.Render(tickSent)
	case model.StatusDelivered:
		return b.theme.TickPending.Render(tickDelivered)
	case model.StatusRead:
		return b.theme.TickRead.Render(tickDelivered)
	default:
		return ""
	}
}

// ==========================================================================
// TUTOR BUBBLE - Indigo tones, markdown rendered
// ==========================================================================

func (b *MessageBubble) renderTutorBubble() string {
	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	nodes := markdown.Render(b.Message.Content)
	content := RenderNodes(nodes, maxContentWidth, b.CodeStyle)
	if content == "" {
		content = "..."
	}
	if b.Streaming {
		content += " ▌"
	}

	bubble := b.theme.TutorBubble.MaxWidth(b.Width - 8).Render(content)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	footer := roleStyle.Render("tutor")
	if b.ShowTimestamp && !b.Streaming {
		footer += " " + b.theme.SessionMeta.Render(formatTime(b.Message.Timestamp))
	}
	if links := b.renderMediaLinks(); links != "" {
		footer += "  " + links
	}

	return bubble + "\n" + footer
}

// renderMediaLinks shows the synthesized renditions attached to a
// voice or video response.
func (b *MessageBubble) renderMediaLinks() string {
	media := b.Message.Media
	if media.IsZero() {
		return ""
	}
	var parts []string
	if media.AudioURL != "" {
		parts = append(parts, b.theme.MediaLink.Render("♪ audio"))
	}
	if media.VideoURL != "" {
		parts = append(parts, b.theme.MediaLink.Render("▶ video"))
	}
	return strings.Join(parts, " ")
}
