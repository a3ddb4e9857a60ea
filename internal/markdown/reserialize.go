// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown transforms raw markdown text into a flat node sequence.
package markdown

import "strings"

// =============================================================================
// RESERIALIZE
// =============================================================================

// Reserialize reconstructs canonical markdown source from a node sequence.
// The output is canonical, not byte-identical to the original: hard breaks
// become soft breaks, ordered items renumber from 1, blockquote markers drop.
// Rendering the reserialized text yields the same node sequence.
func Reserialize(nodes []Node) string {
	var out strings.Builder
	var block strings.Builder
	blockOpen := false

	flush := func() {
		if !blockOpen {
			return
		}
		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(block.String())
		block.Reset()
		blockOpen = false
	}

	open := func(prefix string) {
		flush()
		blockOpen = true
		block.WriteString(prefix)
	}

	for _, n := range nodes {
		switch n.Kind {
		case KindParagraph:
			open("")

		case KindHeading:
			open(strings.Repeat("#", clampLevel(n.Level)) + " ")

		case KindListItem:
			if n.Ordered {
				open("1. ")
			} else {
				open("- ")
			}

		case KindCodeBlock:
			open("```" + n.Language + "\n")
			block.WriteString(n.Content)
			if !strings.HasSuffix(n.Content, "\n") && n.Content != "" {
				block.WriteByte('\n')
			}
			block.WriteString("```")

		case KindThematicBreak:
			open("---")

		case KindText:
			blockOpen = true
			block.WriteString(escapeText(n.Content))

		case KindEmphasis:
			blockOpen = true
			block.WriteString("*" + escapeText(n.Content) + "*")

		case KindStrong:
			blockOpen = true
			block.WriteString("**" + escapeText(n.Content) + "**")

		case KindCodeSpan:
			blockOpen = true
			block.WriteString("`" + n.Content + "`")

		case KindLink:
			blockOpen = true
			block.WriteString("[" + escapeText(n.Content) + "](" + n.Destination + ")")

		case KindLineBreak:
			blockOpen = true
			block.WriteByte('\n')
		}
	}

	flush()
	return out.String()
}

// clampLevel keeps heading levels in the markdown-legal 1..6 range.
func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// escapeText protects literal text that would otherwise re-parse as markup.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`#`, `\#`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
