// Package compositor layers window panes onto the canvas at absolute
// positions without clearing the screen. ANSI-aware string manipulation
// keeps styling intact in both layers.
package compositor

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Blank returns an empty canvas of the given size.
func Blank(width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	row := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

// Place renders fg on top of bg with fg's top-left corner at (x, y).
// Lines falling outside the background are clipped.
func Place(x, y int, fg, bg string) string {
	if fg == "" {
		return bg
	}
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	for i, fgLine := range fgLines {
		bgY := y + i
		if bgY < 0 || bgY >= len(bgLines) {
			continue
		}

		bgLine := bgLines[bgY]
		fgWidth := ansi.StringWidth(fgLine)

		left := ansi.Truncate(bgLine, x, "")
		if lw := ansi.StringWidth(left); lw < x {
			left += strings.Repeat(" ", x-lw)
		}

		endX := x + fgWidth
		var right string
		if endX < ansi.StringWidth(bgLine) {
			right = ansi.TruncateLeft(bgLine, endX, "")
		}

		bgLines[bgY] = left + fgLine + right
	}

	return strings.Join(bgLines, "\n")
}
