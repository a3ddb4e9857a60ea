// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tutor-tui/internal/markdown"
	"github.com/jeranaias/tutor-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN NODE RENDERER
// =============================================================================

// RenderNodes turns a rendered markdown node sequence into styled
// terminal text. Used for both committed tutor messages and the live
// cumulative re-render while a response streams.
func RenderNodes(nodes []markdown.Node, width int, codeStyle string) string {
	var b strings.Builder
	var listIndex int

	headingStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Indigo)
	emphStyle := lipgloss.NewStyle().Italic(true)
	strongStyle := lipgloss.NewStyle().Bold(true)
	linkStyle := lipgloss.NewStyle().Foreground(styles.Teal).Underline(true)
	ruleStyle := lipgloss.NewStyle().Foreground(styles.Overlay)

	for i, n := range nodes {
		switch n.Kind {
		case markdown.KindParagraph:
			if i > 0 {
				b.WriteString("\n\n")
			}
			listIndex = 0
		case markdown.KindHeading:
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(headingStyle.Render(strings.Repeat("#", n.Level) + " "))
			listIndex = 0
		case markdown.KindListItem:
			if i > 0 {
				b.WriteString("\n")
			}
			if n.Ordered {
				listIndex++
				b.WriteString("  " + toStr(listIndex) + ". ")
			} else {
				b.WriteString("  • ")
			}
		case markdown.KindCodeBlock:
			if i > 0 {
				b.WriteString("\n\n")
			}
			cb := NewCodeBlock(n.Language, n.Content)
			cb.SetMaxWidth(width)
			cb.SetCodeStyle(codeStyle)
			b.WriteString(cb.Render())
			listIndex = 0
		case markdown.KindThematicBreak:
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(ruleStyle.Render(strings.Repeat("─", minInt(width, 40))))
			listIndex = 0
		case markdown.KindText:
			b.WriteString(n.Content)
		case markdown.KindEmphasis:
			b.WriteString(emphStyle.Render(n.Content))
		case markdown.KindStrong:
			b.WriteString(strongStyle.Render(n.Content))
		case markdown.KindCodeSpan:
			b.WriteString(RenderInlineCode(n.Content))
		case markdown.KindLink:
			label := n.Content
			if label == "" {
				label = n.Destination
			}
			b.WriteString(linkStyle.Render(label))
		case markdown.KindLineBreak:
			b.WriteString("\n")
		}
	}

	return b.String()
}
