// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown transforms raw markdown text into a flat node sequence.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// =============================================================================
// NODE TYPES
// =============================================================================

// Kind identifies the structural role of a node.
type Kind int

const (
	// Block markers. A block marker opens a block; the inline nodes that
	// follow it (up to the next block marker) are its content.
	KindParagraph Kind = iota
	KindHeading
	KindListItem
	KindCodeBlock
	KindThematicBreak

	// Inline nodes.
	KindText
	KindEmphasis
	KindStrong
	KindCodeSpan
	KindLink
	KindLineBreak
)

// String returns the node kind name for debugging and test output.
func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list-item"
	case KindCodeBlock:
		return "code-block"
	case KindThematicBreak:
		return "thematic-break"
	case KindText:
		return "text"
	case KindEmphasis:
		return "emphasis"
	case KindStrong:
		return "strong"
	case KindCodeSpan:
		return "code-span"
	case KindLink:
		return "link"
	case KindLineBreak:
		return "line-break"
	default:
		return "unknown"
	}
}

// Node is one structural element of rendered markdown.
type Node struct {
	Kind Kind

	// Content is the literal text for inline nodes and the full body for
	// code blocks. Block markers other than code blocks carry no content.
	Content string

	// Level is the heading level (1-6). Zero for other kinds.
	Level int

	// Language is the fenced code block info string. Empty for other kinds.
	Language string

	// Destination is the link target. Empty for other kinds.
	Destination string

	// Ordered marks a list item as belonging to an ordered list.
	Ordered bool
}

// =============================================================================
// RENDER
// =============================================================================

// parser is shared across calls. goldmark parsers are stateless with respect
// to input, which keeps Render pure.
var parser = goldmark.New()

// Render parses src and returns its flat node sequence.
// Never fails: malformed or partial markdown degrades to text nodes.
func Render(src string) []Node {
	source := []byte(src)
	doc := parser.Parser().Parse(text.NewReader(source))

	w := &walker{source: source}
	ast.Walk(doc, w.visit)
	w.flushText()
	return w.nodes
}

// walker accumulates flat nodes during an AST walk.
type walker struct {
	source   []byte
	nodes    []Node
	pending  strings.Builder // coalesces adjacent literal text
	listItem int             // >0 while inside a list item
	ordered  bool            // ordering of the innermost list
}

// flushText emits any coalesced literal text as a single text node.
func (w *walker) flushText() {
	if w.pending.Len() == 0 {
		return
	}
	w.nodes = append(w.nodes, Node{Kind: KindText, Content: w.pending.String()})
	w.pending.Reset()
}

func (w *walker) emit(n Node) {
	w.flushText()
	w.nodes = append(w.nodes, n)
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Document:
		return ast.WalkContinue, nil

	case *ast.Heading:
		if entering {
			w.emit(Node{Kind: KindHeading, Level: node.Level})
		} else {
			w.flushText()
		}
		return ast.WalkContinue, nil

	case *ast.Paragraph:
		// Paragraphs inside list items collapse into the item itself.
		if entering {
			if w.listItem == 0 {
				w.emit(Node{Kind: KindParagraph})
			}
		} else {
			w.flushText()
		}
		return ast.WalkContinue, nil

	case *ast.TextBlock:
		// Tight list item content; the list item marker already opened it.
		if !entering {
			w.flushText()
		}
		return ast.WalkContinue, nil

	case *ast.List:
		if entering {
			w.ordered = node.IsOrdered()
		}
		return ast.WalkContinue, nil

	case *ast.ListItem:
		if entering {
			w.listItem++
			w.emit(Node{Kind: KindListItem, Ordered: w.ordered})
		} else {
			w.flushText()
			w.listItem--
		}
		return ast.WalkContinue, nil

	case *ast.FencedCodeBlock:
		if entering {
			w.emit(Node{
				Kind:     KindCodeBlock,
				Language: string(node.Language(w.source)),
				Content:  blockLines(node, w.source),
			})
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if entering {
			w.emit(Node{Kind: KindCodeBlock, Content: blockLines(node, w.source)})
		}
		return ast.WalkSkipChildren, nil

	case *ast.ThematicBreak:
		if entering {
			w.emit(Node{Kind: KindThematicBreak})
		}
		return ast.WalkSkipChildren, nil

	case *ast.Blockquote:
		// Quoting is a presentation concern; contents flatten into blocks.
		return ast.WalkContinue, nil

	case *ast.Emphasis:
		if entering {
			kind := KindEmphasis
			if node.Level >= 2 {
				kind = KindStrong
			}
			w.emit(Node{Kind: kind, Content: inlineText(node, w.source)})
		}
		return ast.WalkSkipChildren, nil

	case *ast.CodeSpan:
		if entering {
			w.emit(Node{Kind: KindCodeSpan, Content: rawText(node, w.source)})
		}
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		if entering {
			w.emit(Node{
				Kind:        KindLink,
				Content:     inlineText(node, w.source),
				Destination: string(node.Destination),
			})
		}
		return ast.WalkSkipChildren, nil

	case *ast.AutoLink:
		if entering {
			url := string(node.URL(w.source))
			w.emit(Node{Kind: KindLink, Content: url, Destination: url})
		}
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			w.pending.WriteString(unescapeText(node.Segment.Value(w.source)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.emit(Node{Kind: KindLineBreak})
			}
		}
		return ast.WalkContinue, nil

	case *ast.String:
		if entering {
			w.pending.Write(node.Value)
		}
		return ast.WalkContinue, nil
	}

	return ast.WalkContinue, nil
}

// blockLines concatenates the raw lines of a code block.
func blockLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

// inlineText flattens the literal text of an inline node's subtree.
// Nested inline structure (emphasis inside strong) collapses to its text.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.WriteString(unescapeText(t.Segment.Value(source)))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(inlineText(c, source))
		}
	}
	return sb.String()
}

// rawText flattens an inline subtree without escape resolution. Code spans
// keep their bytes verbatim; backslashes are not escapes inside code.
func rawText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(rawText(c, source))
		}
	}
	return sb.String()
}

// unescapeText resolves backslash escapes in a raw text segment. The
// parser leaves escapes in place, so a reparse of reserialized output
// would otherwise accumulate literal backslashes. Only ASCII punctuation
// is escapable; any other backslash is a literal character.
func unescapeText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) && isEscapable(b[i+1]) {
			i++
		}
		sb.WriteByte(b[i])
	}
	return sb.String()
}

func isEscapable(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
