// Package grapheme provides grapheme-cluster-aware width helpers for
// fixed-width cell rendering.
package grapheme

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Width returns the monospace display width of text in terminal cells.
func Width(text string) int {
	return uniseg.StringWidth(text)
}

// Truncate cuts text at grapheme boundaries so its display width does not
// exceed w. A wide grapheme straddling the limit is dropped whole.
func Truncate(text string, w int) string {
	if w <= 0 {
		return ""
	}
	if uniseg.StringWidth(text) <= w {
		return text
	}

	var sb strings.Builder
	used := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		gw := g.Width()
		if used+gw > w {
			break
		}
		sb.WriteString(g.Str())
		used += gw
	}
	return sb.String()
}

// Fit truncates or pads text to exactly w cells. alignRight pads on the
// left, for numeric columns.
func Fit(text string, w int, alignRight bool) string {
	if w <= 0 {
		return ""
	}
	text = Truncate(text, w)
	pad := w - Width(text)
	if pad <= 0 {
		return text
	}
	if alignRight {
		return strings.Repeat(" ", pad) + text
	}
	return text + strings.Repeat(" ", pad)
}
