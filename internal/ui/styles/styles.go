// Package styles contains Lip Gloss style definitions.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/folio/internal/window"
)

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"}

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Prompt and selection accent
	HighlightColor = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#7D56F4"}

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)
	StatusBarWarnStyle = StatusBarStyle.
				Foreground(StatusWarningColor)

	// Help footer
	HelpStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
)

// accentColors maps the window palette to terminal colors.
var accentColors = map[window.Color]lipgloss.AdaptiveColor{
	"slate":  {Light: "#64748B", Dark: "#94A3B8"},
	"red":    {Light: "#DC2626", Dark: "#F87171"},
	"amber":  {Light: "#D97706", Dark: "#FBBF24"},
	"green":  {Light: "#16A34A", Dark: "#4ADE80"},
	"teal":   {Light: "#0D9488", Dark: "#2DD4BF"},
	"blue":   {Light: "#2563EB", Dark: "#60A5FA"},
	"violet": {Light: "#7C3AED", Dark: "#A78BFA"},
	"rose":   {Light: "#E11D48", Dark: "#FB7185"},
}

// ApplyTheme overrides the default colors with configured values and
// rebuilds the styles that captured them. Empty values keep defaults.
func ApplyTheme(highlight, subtle, errColor, success string) {
	if highlight != "" {
		HighlightColor = lipgloss.AdaptiveColor{Light: highlight, Dark: highlight}
	}
	if subtle != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: subtle, Dark: subtle}
	}
	if errColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errColor, Dark: errColor}
		StatusWarningColor = StatusErrorColor
	}
	if success != "" {
		StatusSuccessColor = lipgloss.AdaptiveColor{Light: success, Dark: success}
	}
	StatusBarWarnStyle = StatusBarStyle.Foreground(StatusWarningColor)
	HelpStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
}

// AccentColor returns the terminal color for a window accent.
func AccentColor(c window.Color) lipgloss.AdaptiveColor {
	if color, ok := accentColors[c]; ok {
		return color
	}
	return accentColors[window.Palette[0]]
}

// TruncateString truncates a string to fit within maxWidth, adding an
// ellipsis if needed.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > maxWidth-3 {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + "..."
}
