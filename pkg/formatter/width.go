package formatter

import "github.com/mattn/go-runewidth"

// MaxMessageWidth defines the maximum display width for error messages in tables
const MaxMessageWidth = 60

// truncate shortens s to width display columns, marking the cut with ".."
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "..")
}
