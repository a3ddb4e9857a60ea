// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// toStr converts int to string without fmt.
func toStr(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + toStr(-n)
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// wordWrap wraps text at word boundaries to the given display width.
// Words wider than the limit are kept whole rather than broken mid-word.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			if runewidth.StringWidth(current)+1+runewidth.StringWidth(w) <= width {
				current += " " + w
			} else {
				out = append(out, current)
				current = w
			}
		}
		out = append(out, current)
	}
	return strings.Join(out, "\n")
}

// maxLineWidth returns the widest display width among the text's lines.
func maxLineWidth(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// formatTime renders a message timestamp relative to now, falling back
// to a clock time for anything older than a day.
func formatTime(t time.Time) string {
	elapsed := time.Since(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return toStr(int(elapsed.Minutes())) + "m ago"
	case elapsed < 24*time.Hour:
		return toStr(int(elapsed.Hours())) + "h ago"
	default:
		return t.Format("Jan 2 15:04")
	}
}
