package util

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Terminal color sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorBold    = "\033[1m"
)

const (
	defaultTerminalWidth = 80
	minTerminalWidth     = 40
)

// GetDisplayWidth returns the number of terminal cells text occupies.
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads s with spaces to width cells. Right aligned unless leftAlign.
func PadString(s string, width int, leftAlign bool) string {
	w := GetDisplayWidth(s)
	if w >= width {
		return s
	}
	padding := strings.Repeat(" ", width-w)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// TruncateString cuts s to width cells, marking the cut with "...".
func TruncateString(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < minTerminalWidth {
		return defaultTerminalWidth
	}
	return width
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CreateProgressBar renders ratio (0..1) as a bar of width cells, brackets included.
func CreateProgressBar(ratio float64, width int) string {
	if width < 3 {
		width = 3
	}
	barWidth := width - 2
	filled := int(ratio * float64(barWidth))
	filled = max(0, min(filled, barWidth))

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

// ClimbColor picks green for lift, red for sink.
func ClimbColor(rate float64) string {
	switch {
	case rate >= 1:
		return ColorGreen
	case rate > 0:
		return ColorYellow
	default:
		return ColorRed
	}
}

// Colorize wraps text in color when stdout is a terminal.
func Colorize(text, color string) string {
	if !IsTerminal() {
		return text
	}
	return color + text + ColorReset
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return Colorize(title, ColorBold+ColorMagenta)
}

// FormatSectionSeparator draws a rule width cells wide.
func FormatSectionSeparator(width int) string {
	return strings.Repeat("─", width)
}
