package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// formatTime renders seconds as MM:SS. Invalid values render as 00:00.
func formatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", int(seconds)/60, int(seconds)%60)
}

// visualWidth returns the display width of s, skipping ANSI escape sequences.
func visualWidth(s string) int {
	width := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			width += runewidth.RuneWidth(r)
		}
	}
	return width
}

// truncateToWidth cuts s to at most maxWidth display cells while keeping ANSI
// escape sequences intact.
func truncateToWidth(s string, maxWidth int) string {
	width := 0
	inEscape := false
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
			sb.WriteRune(r)
		case inEscape:
			sb.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
		default:
			w := runewidth.RuneWidth(r)
			if width+w > maxWidth {
				return sb.String()
			}
			sb.WriteRune(r)
			width += w
		}
	}
	return sb.String()
}

// padToWidth right-pads s with spaces to the given display width.
func padToWidth(s string, width int) string {
	w := visualWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
