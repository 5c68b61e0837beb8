package render

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// Natural page dimensions for text documents, in cells.
const (
	basePageWidth  = 80
	basePageHeight = 40
)

const snippetRadius = 30

// TextDocument is the built-in Renderer/Searcher backend: it paginates a
// plain-text or markdown payload into fixed-height pages. Markdown pages
// are styled through glamour.
type TextDocument struct {
	name     string
	markdown bool
	style    string
	pages    []string
	outline  []OutlineItem
}

var (
	_ Renderer = (*TextDocument)(nil)
	_ Searcher = (*TextDocument)(nil)
)

// NewTextDocument paginates data into a document. markdown selects glamour
// styling and heading-based outline extraction.
func NewTextDocument(name string, data []byte, markdown bool) *TextDocument {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	d := &TextDocument{name: name, markdown: markdown}
	for start := 0; start < len(lines); start += basePageHeight {
		end := min(start+basePageHeight, len(lines))
		d.pages = append(d.pages, strings.Join(lines[start:end], "\n"))
	}
	if len(d.pages) == 0 {
		d.pages = []string{""}
	}
	if markdown {
		d.outline = extractOutline(lines)
	}
	return d
}

// Name returns the document name.
func (d *TextDocument) Name() string {
	return d.name
}

// SetStyle selects the glamour style name used for markdown pages.
// Empty keeps the default.
func (d *TextDocument) SetStyle(style string) {
	d.style = style
}

// PageCount returns the number of pages.
func (d *TextDocument) PageCount() int {
	return len(d.pages)
}

// NaturalPageSize reports the unscaled page size. Always available for
// text documents.
func (d *TextDocument) NaturalPageSize(page int) (Size, bool) {
	if page < 1 || page > len(d.pages) {
		return Size{}, false
	}
	return Size{Width: basePageWidth, Height: basePageHeight}, true
}

// Outline returns heading entries for markdown documents, nil otherwise.
func (d *TextDocument) Outline() []OutlineItem {
	cp := make([]OutlineItem, len(d.outline))
	copy(cp, d.outline)
	return cp
}

// PageText returns the raw text of a page.
func (d *TextDocument) PageText(page int) (string, error) {
	if page < 1 || page > len(d.pages) {
		return "", fmt.Errorf("page %d of %d: %w", page, len(d.pages), ErrPageOutOfRange)
	}
	return d.pages[page-1], nil
}

// Render produces the frame for a page. Zoom scales the wrap width; text
// documents always render upright, recording the requested rotation in the
// frame for the caller.
func (d *TextDocument) Render(ctx context.Context, page int, zoom float64, rotation int) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrRenderCancelled, err)
	}
	text, err := d.PageText(page)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	width := int(float64(basePageWidth) * zoom)
	if width < 20 {
		width = 20
	}

	var content string
	if d.markdown {
		content, err = renderMarkdown(text, width, d.style)
		if err != nil {
			// Fall back to plain text when styling fails.
			content = wordwrap.String(text, width)
		}
	} else {
		content = wordwrap.String(text, width)
	}

	if err := ctx.Err(); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrRenderCancelled, err)
	}
	return Frame{
		Page:     page,
		Zoom:     zoom,
		Rotation: rotation,
		Content:  content,
		Width:    width,
		Height:   strings.Count(content, "\n") + 1,
	}, nil
}

// Search scans all pages for case-insensitive matches of query.
func (d *TextDocument) Search(ctx context.Context, query string) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	needle := strings.ToLower(query)

	var matches []Match
	for i, page := range d.pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		haystack := strings.ToLower(page)
		offset := 0
		for {
			at := strings.Index(haystack[offset:], needle)
			if at < 0 {
				break
			}
			abs := offset + at
			matches = append(matches, Match{
				Page:    i + 1,
				Offset:  abs,
				Snippet: snippet(page, abs, len(needle)),
			})
			offset = abs + len(needle)
		}
	}
	return matches, nil
}

func snippet(text string, at, length int) string {
	start := max(at-snippetRadius, 0)
	end := min(at+length+snippetRadius, len(text))
	// The radius is a byte offset; step back to rune boundaries so the
	// slice never splits a multi-byte character.
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end > start && end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	s := strings.ReplaceAll(text[start:end], "\n", " ")
	return strings.TrimSpace(s)
}

func renderMarkdown(text string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// extractOutline builds outline entries from markdown ATX headings.
func extractOutline(lines []string) []OutlineItem {
	var items []OutlineItem
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "#") {
			continue
		}
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level > 6 || level >= len(trimmed) || trimmed[level] != ' ' {
			continue
		}
		items = append(items, OutlineItem{
			Title: strings.TrimSpace(trimmed[level:]),
			Page:  i/basePageHeight + 1,
			Depth: level - 1,
		})
	}
	return items
}
