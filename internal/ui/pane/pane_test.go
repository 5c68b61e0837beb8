package pane

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func TestRenderDimensions(t *testing.T) {
	out := Render(Props{
		Title:   "Report",
		Color:   "blue",
		Content: "hello\nworld",
		Width:   30,
		Height:  8,
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)
	for _, line := range lines {
		require.Equal(t, 30, lipgloss.Width(line))
	}
}

func TestRenderEmbedsTitle(t *testing.T) {
	out := Render(Props{Title: "Quarterly", Color: "red", Width: 30, Height: 6})
	require.Contains(t, out, "Quarterly")
}

func TestRenderTruncatesLongTitle(t *testing.T) {
	out := Render(Props{
		Title:  "A very long window title that cannot possibly fit",
		Color:  "teal",
		Width:  20,
		Height: 5,
	})
	lines := strings.Split(out, "\n")
	require.Equal(t, 20, lipgloss.Width(lines[0]))
	require.Contains(t, lines[0], "...")
}

func TestRenderStatusLine(t *testing.T) {
	out := Render(Props{
		Title:     "Doc",
		Color:     "green",
		Width:     40,
		Height:    6,
		Page:      3,
		PageCount: 12,
		Zoom:      1.5,
		Rotation:  90,
	})
	require.Contains(t, out, "3/12")
	require.Contains(t, out, "150%")
	require.Contains(t, out, "90°")
}

func TestRenderTinyPaneDoesNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		Render(Props{Title: "x", Width: 1, Height: 1})
		Render(Props{Title: "x", Width: 0, Height: 0})
	})
}
