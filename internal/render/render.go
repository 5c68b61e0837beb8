// Package render defines the document rendering and page-text search
// contracts consumed by window controllers, plus a plain-text/markdown
// implementation used as the built-in document backend.
//
// Rendering and search are asynchronous from the caller's point of view:
// both take a context, and a superseded request is cancelled through that
// context. Cancellation is an expected outcome, not a failure.
package render

import (
	"context"
	"errors"
)

// Sentinel errors for the renderer contract.
var (
	// ErrRenderCancelled reports a render superseded by a newer request.
	// Callers absorb it silently.
	ErrRenderCancelled = errors.New("render cancelled")

	// ErrRenderFailed reports a renderer-side failure. Surfaced as a
	// window-scoped status, never a crash.
	ErrRenderFailed = errors.New("render failed")

	// ErrPageOutOfRange reports a page outside the document.
	ErrPageOutOfRange = errors.New("page out of range")
)

// Frame is one rendered page.
type Frame struct {
	Page     int
	Zoom     float64
	Rotation int
	Content  string // styled text, line-separated
	Width    int
	Height   int
}

// Size is a natural page size in cells.
type Size struct {
	Width  int
	Height int
}

// OutlineItem is one entry of a document outline tree, flattened in
// document order. Depth is the nesting level starting at zero. Page may be
// zero when the entry has no target.
type OutlineItem struct {
	Title string
	Page  int
	Depth int
}

// Match is one search hit.
type Match struct {
	Page    int
	Offset  int
	Snippet string
}

// Renderer rasterizes document pages. Implementations must honor ctx
// cancellation by returning an error wrapping context.Canceled or
// ErrRenderCancelled.
type Renderer interface {
	// Render produces the frame for a page at the given zoom and rotation.
	Render(ctx context.Context, page int, zoom float64, rotation int) (Frame, error)

	// NaturalPageSize reports the unscaled size of a page. The second
	// return is false while the metric is unavailable (e.g. the document
	// has not loaded yet); callers treat that as "fit zoom is a no-op".
	NaturalPageSize(page int) (Size, bool)

	// Outline returns the document outline in document order, or nil.
	Outline() []OutlineItem

	// PageText returns the plain text of a page.
	PageText(page int) (string, error)

	// PageCount returns the total number of pages, or 0 when unknown.
	PageCount() int
}

// Searcher finds query matches across a document's pages.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Match, error)
}
