// Package pane renders one window as a bordered panel with the title
// embedded in the top border, lazygit style: ╭─ Title ─────╮
package pane

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/folio/internal/ui/styles"
	"github.com/zjrosen/folio/internal/window"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Props describes one window to draw.
type Props struct {
	Title     string
	Color     window.Color
	Content   string
	Width     int
	Height    int
	Focused   bool
	Pinned    bool
	Maximized bool
	Page      int
	PageCount int
	Zoom      float64
	Rotation  int
}

// Render draws the pane at its configured size.
func Render(p Props) string {
	innerWidth := p.Width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	contentHeight := p.Height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}

	var borderColor lipgloss.TerminalColor = styles.BorderDefaultColor
	if p.Focused {
		borderColor = styles.AccentColor(p.Color)
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(styles.AccentColor(p.Color)).Bold(p.Focused)

	top := buildTopBorder(decorateTitle(p), innerWidth, borderStyle, titleStyle)
	bottom := buildBottomBorder(statusLine(p), innerWidth, borderStyle)

	constrained := lipgloss.NewStyle().
		Width(innerWidth).
		Height(contentHeight).
		MaxWidth(innerWidth).
		MaxHeight(contentHeight).
		Render(p.Content)

	lines := strings.Split(constrained, "\n")
	body := make([]string, contentHeight)
	for i := 0; i < contentHeight; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		body[i] = borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical)
	}

	var out strings.Builder
	out.WriteString(top)
	out.WriteString("\n")
	out.WriteString(strings.Join(body, "\n"))
	out.WriteString("\n")
	out.WriteString(bottom)
	return out.String()
}

// decorateTitle prefixes the title with state glyphs.
func decorateTitle(p Props) string {
	title := p.Title
	if p.Pinned {
		title = "📌 " + title
	}
	if p.Maximized {
		title = "⛶ " + title
	}
	return title
}

// statusLine summarizes page, zoom, and rotation for the bottom border.
func statusLine(p Props) string {
	if p.PageCount <= 0 {
		return ""
	}
	s := fmt.Sprintf("%d/%d", p.Page, p.PageCount)
	if p.Zoom != 1.0 {
		s += fmt.Sprintf(" %.0f%%", p.Zoom*100)
	}
	if p.Rotation != 0 {
		s += fmt.Sprintf(" %d°", p.Rotation)
	}
	return s
}

func buildTopBorder(title string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	if title == "" || innerWidth < 4 {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}

	display := styles.TruncateString(title, innerWidth-4)
	remaining := innerWidth - 3 - lipgloss.Width(display)
	if remaining < 0 {
		remaining = 0
	}
	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Render(display) +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, remaining)+borderTopRight)
}

func buildBottomBorder(status string, innerWidth int, borderStyle lipgloss.Style) string {
	if status == "" || innerWidth < lipgloss.Width(status)+4 {
		return borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight)
	}

	leading := innerWidth - 3 - lipgloss.Width(status)
	return borderStyle.Render(borderBottomLeft+strings.Repeat(borderHorizontal, leading)+" ") +
		borderStyle.Render(status) +
		borderStyle.Render(" "+borderHorizontal+borderBottomRight)
}
