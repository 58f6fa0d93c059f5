package utils

import "github.com/mattn/go-runewidth"

// TruncateCell shortens text to fit within width terminal cells, marking the cut.
func TruncateCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(text, width, "…")
}
