package window

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zjrosen/folio/internal/bookmarks"
	"github.com/zjrosen/folio/internal/geometry"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/render"
)

// FitMode selects how FitZoom computes its target ratio.
type FitMode int

const (
	// FitWidth makes the rendered page match the window's content width.
	FitWidth FitMode = iota
	// FitPage makes the whole page fit the window's content area.
	FitPage
)

// Zoom step used by StepZoom callers.
const ZoomStep = 0.25

// Options wires a controller into its surroundings. All fields are
// optional; nil callbacks become no-ops.
type Options struct {
	// Publish delivers domain events. The controller never calls back
	// into its owner any other way.
	Publish func(Event)

	// Persist schedules an asynchronous, always-latest write of the
	// window's record. Fire and forget.
	Persist func(Record)

	// Viewport returns the canvas rectangle used for maximize bounds,
	// move/resize clamping, and fit-zoom math.
	Viewport func() geometry.Rect
}

// Controller owns one window's full interactive state. Every command
// validates and clamps its input, mutates the window, publishes one domain
// event, schedules a persistence write, and (where the view changed)
// kicks off an asynchronous re-render. Commands resolve to a Status and
// never propagate errors to the UI layer.
//
// Controller methods are safe for concurrent use; render and search
// completions arrive from their own goroutines.
type Controller struct {
	mu  sync.Mutex
	win *Window
	doc render.Renderer
	src render.Searcher

	publish  func(Event)
	persist  func(Record)
	viewport func() geometry.Rect

	renderCancel context.CancelFunc
	searchCancel context.CancelFunc

	frame      render.Frame
	frameReady bool
	matches    []render.Match
	lastQuery  string
	closed     bool
}

// NewController builds a controller around win. doc supplies rendering and
// page metrics; src may be nil when the document is not searchable.
func NewController(win *Window, doc render.Renderer, src render.Searcher, opts Options) *Controller {
	c := &Controller{
		win:      win,
		doc:      doc,
		src:      src,
		publish:  opts.Publish,
		persist:  opts.Persist,
		viewport: opts.Viewport,
	}
	if c.publish == nil {
		c.publish = func(Event) {}
	}
	if c.persist == nil {
		c.persist = func(Record) {}
	}
	if c.viewport == nil {
		c.viewport = func() geometry.Rect { return geometry.Rect{} }
	}
	return c
}

// ID returns the window's stable identifier.
func (c *Controller) ID() string { return c.win.ID() }

// Window returns the owned window for read access.
func (c *Controller) Window() *Window { return c.win }

// Doc returns the renderer backing this window.
func (c *Controller) Doc() render.Renderer { return c.doc }

// Searcher returns the searcher backing this window, nil when the
// document is not searchable.
func (c *Controller) Searcher() render.Searcher { return c.src }

// Record returns the window's current serializable projection.
func (c *Controller) Record() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.win.Record()
}

// Frame returns the most recently completed render, if any.
func (c *Controller) Frame() (render.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame, c.frameReady
}

// Matches returns the results of the last completed search.
func (c *Controller) Matches() []render.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]render.Match, len(c.matches))
	copy(cp, c.matches)
	return cp
}

// TotalPages returns the renderer-reported page count, 0 when unknown.
func (c *Controller) TotalPages() int {
	if c.doc == nil {
		return 0
	}
	return c.doc.PageCount()
}

// SetPage navigates to page n, clamped into the document. A changed page
// is pushed onto the navigation history (truncating any forward branch);
// navigating to the current page re-renders without touching history.
func (c *Controller) SetPage(n int) Status {
	return c.setPage(n, false)
}

func (c *Controller) setPage(n int, fromHistory bool) Status {
	c.mu.Lock()
	target := geometry.ClampPage(n, c.TotalPages())
	changed := target != c.win.page
	c.win.page = target
	if changed && !fromHistory {
		c.win.hist.Record(target)
	}
	c.mu.Unlock()

	c.publish(Event{Type: EventPage, WindowID: c.ID(), Value: target})
	if changed {
		c.schedulePersist()
	}
	c.refresh()
	return Status{}
}

// StepPage moves delta pages from the current one.
func (c *Controller) StepPage(delta int) Status {
	return c.SetPage(c.win.Page() + delta)
}

// FirstPage navigates to page 1.
func (c *Controller) FirstPage() Status {
	return c.SetPage(1)
}

// LastPage navigates to the final page. No-op status when the page count
// is unknown.
func (c *Controller) LastPage() Status {
	total := c.TotalPages()
	if total < 1 {
		return infoStatus("page count unknown")
	}
	return c.SetPage(total)
}

// NavigateHistory moves the history cursor by offset without recording a
// new entry. Out-of-range offsets clamp silently to a no-op.
func (c *Controller) NavigateHistory(offset int) Status {
	c.mu.Lock()
	page, moved := c.win.hist.Seek(offset)
	c.mu.Unlock()
	if !moved {
		return Status{}
	}
	return c.setPage(page, true)
}

// Back steps one entry back in the navigation history.
func (c *Controller) Back() Status { return c.NavigateHistory(-1) }

// Forward steps one entry forward in the navigation history.
func (c *Controller) Forward() Status { return c.NavigateHistory(1) }

// SetZoom sets the zoom factor, clamped and rounded.
func (c *Controller) SetZoom(z float64) Status {
	c.mu.Lock()
	c.win.zoom = geometry.ClampZoom(z)
	z = c.win.zoom
	c.mu.Unlock()

	c.publish(Event{Type: EventZoom, WindowID: c.ID(), Value: z})
	c.schedulePersist()
	c.refresh()
	return Status{}
}

// StepZoom adjusts the zoom by delta.
func (c *Controller) StepZoom(delta float64) Status {
	return c.SetZoom(c.win.Zoom() + delta)
}

// ResetZoom restores the default zoom.
func (c *Controller) ResetZoom() Status {
	return c.SetZoom(geometry.DefaultZoom)
}

// FitZoom computes the zoom that fits the page to the window's content
// area. When the renderer has no page metrics yet the command is a
// reported no-op.
func (c *Controller) FitZoom(mode FitMode) Status {
	natural, ok := c.doc.NaturalPageSize(c.win.Page())
	if !ok || natural.Width <= 0 || natural.Height <= 0 {
		return infoStatus("page size not available yet")
	}
	bounds := c.win.Bounds()
	contentW := bounds.Width - 2
	contentH := bounds.Height - 2
	if contentW <= 0 || contentH <= 0 {
		return infoStatus("window too small to fit")
	}

	widthRatio := float64(contentW) / float64(natural.Width)
	switch mode {
	case FitPage:
		heightRatio := float64(contentH) / float64(natural.Height)
		return c.SetZoom(min(widthRatio, heightRatio))
	default:
		return c.SetZoom(widthRatio)
	}
}

// SetRotation sets the rotation, normalized to a right angle.
func (c *Controller) SetRotation(deg int) Status {
	c.mu.Lock()
	c.win.rotation = geometry.NormalizeRotation(deg)
	deg = c.win.rotation
	c.mu.Unlock()

	c.publish(Event{Type: EventRotation, WindowID: c.ID(), Value: deg})
	c.schedulePersist()
	c.refresh()
	return Status{}
}

// RotateStep rotates by 90 degrees; positive steps are clockwise.
func (c *Controller) RotateStep(steps int) Status {
	return c.SetRotation(c.win.Rotation() + steps*90)
}

// ResetRotation clears the rotation.
func (c *Controller) ResetRotation() Status {
	return c.SetRotation(0)
}

// AddBookmark bookmarks the given page, or the current page when page <= 0.
// An existing bookmark or a full set resolves to a status message, not an
// error.
func (c *Controller) AddBookmark(page int) Status {
	c.mu.Lock()
	if page <= 0 {
		page = c.win.page
	}
	page = geometry.ClampPage(page, c.TotalPages())
	result := c.win.marks.Add(page)
	pages := c.win.marks.Pages()
	c.mu.Unlock()

	switch result {
	case bookmarks.Added:
		c.publish(Event{Type: EventBookmarks, WindowID: c.ID(), Value: pages})
		c.schedulePersist()
		return Status{}
	case bookmarks.Duplicate:
		return infoStatus(fmt.Sprintf("page %d is already bookmarked", page))
	case bookmarks.AtCapacity:
		return warnStatus(fmt.Sprintf("bookmark limit of %d reached", bookmarks.Capacity))
	default:
		return warnStatus(fmt.Sprintf("cannot bookmark page %d", page))
	}
}

// RemoveBookmark deletes a bookmark.
func (c *Controller) RemoveBookmark(page int) Status {
	c.mu.Lock()
	removed := c.win.marks.Remove(page)
	pages := c.win.marks.Pages()
	c.mu.Unlock()

	if !removed {
		return infoStatus(fmt.Sprintf("page %d is not bookmarked", page))
	}
	c.publish(Event{Type: EventBookmarks, WindowID: c.ID(), Value: pages})
	c.schedulePersist()
	return Status{}
}

// JumpToBookmark navigates to a bookmarked page.
func (c *Controller) JumpToBookmark(page int) Status {
	if !c.win.Bookmarks().Contains(page) {
		return infoStatus(fmt.Sprintf("page %d is not bookmarked", page))
	}
	st := c.SetPage(page)
	c.publish(Event{Type: EventBookmarkJumped, WindowID: c.ID(), Value: page})
	return st
}

// NextBookmark jumps to the first bookmark after the current page. The
// absence of one is a reported condition, not an error.
func (c *Controller) NextBookmark() Status {
	page, ok := c.win.Bookmarks().NextAfter(c.win.Page())
	if !ok {
		return infoStatus(fmt.Sprintf("no bookmark after page %d", c.win.Page()))
	}
	return c.JumpToBookmark(page)
}

// PrevBookmark jumps to the last bookmark before the current page.
func (c *Controller) PrevBookmark() Status {
	page, ok := c.win.Bookmarks().PrevBefore(c.win.Page())
	if !ok {
		return infoStatus(fmt.Sprintf("no bookmark before page %d", c.win.Page()))
	}
	return c.JumpToBookmark(page)
}

// Rename sets the window title. Whitespace is trimmed; an empty result
// falls back to the default title derived from the document name.
func (c *Controller) Rename(title string) Status {
	c.mu.Lock()
	trimmed := trimTitle(title)
	if trimmed == "" {
		trimmed = c.win.defaultTitle
	}
	c.win.title = trimmed
	c.mu.Unlock()

	c.publish(Event{Type: EventTitle, WindowID: c.ID(), Value: trimmed})
	c.schedulePersist()
	return Status{}
}

// SetNotes replaces the window's free-text notes.
func (c *Controller) SetNotes(text string) Status {
	c.mu.Lock()
	c.win.notes = text
	c.mu.Unlock()

	c.publish(Event{Type: EventNotes, WindowID: c.ID(), Value: text})
	c.schedulePersist()
	return Status{}
}

// CycleColor advances the accent color through the fixed palette.
func (c *Controller) CycleColor() Status {
	c.mu.Lock()
	c.win.color = c.win.color.Next()
	color := c.win.color
	c.mu.Unlock()

	c.publish(Event{Type: EventColor, WindowID: c.ID(), Value: color})
	c.schedulePersist()
	return Status{}
}

// TogglePin flips the pinned flag. The owning canvas re-tiers the window
// in response to the pin-toggled event.
func (c *Controller) TogglePin() Status {
	c.mu.Lock()
	c.win.pinned = !c.win.pinned
	pinned := c.win.pinned
	c.mu.Unlock()

	c.publish(Event{Type: EventPin, WindowID: c.ID(), Value: pinned})
	c.schedulePersist()
	return Status{}
}

// ToggleMaximize maximizes the window to the viewport, capturing the
// current bounds for restore; a second call restores them.
func (c *Controller) ToggleMaximize() Status {
	vp := c.viewport()

	c.mu.Lock()
	if c.win.maximized {
		c.win.maximized = false
		c.win.bounds = c.win.restoreBounds.ClampTo(vp)
	} else {
		c.win.restoreBounds = c.win.bounds
		c.win.maximized = true
		if vp.Width > 0 && vp.Height > 0 {
			c.win.bounds = vp
		}
	}
	maximized := c.win.maximized
	c.mu.Unlock()

	c.publish(Event{Type: EventMaximize, WindowID: c.ID(), Value: maximized})
	c.schedulePersist()
	c.refresh()
	return Status{}
}

// Move shifts the window by (dx, dy), clamped to the viewport. Maximized
// windows reject the command.
func (c *Controller) Move(dx, dy int) Status {
	c.mu.Lock()
	if c.win.maximized {
		c.mu.Unlock()
		return infoStatus("window is maximized")
	}
	b := c.win.bounds
	b.X += dx
	b.Y += dy
	c.win.bounds = b.ClampTo(c.viewport())
	bounds := c.win.bounds
	c.mu.Unlock()

	c.publish(Event{Type: EventMoved, WindowID: c.ID(), Value: bounds})
	c.schedulePersist()
	return Status{}
}

// Resize grows the window by (dw, dh), clamped to the viewport and the
// minimum size. Maximized windows reject the command.
func (c *Controller) Resize(dw, dh int) Status {
	c.mu.Lock()
	if c.win.maximized {
		c.mu.Unlock()
		return infoStatus("window is maximized")
	}
	b := c.win.bounds
	b.Width += dw
	b.Height += dh
	c.win.bounds = b.ClampTo(c.viewport())
	bounds := c.win.bounds
	c.mu.Unlock()

	c.publish(Event{Type: EventResized, WindowID: c.ID(), Value: bounds})
	c.schedulePersist()
	c.refresh()
	return Status{}
}

// GoToOutline navigates to an outline entry's target page.
func (c *Controller) GoToOutline(item render.OutlineItem) Status {
	if item.Page < 1 {
		return infoStatus("outline entry has no page")
	}
	st := c.SetPage(item.Page)
	c.publish(Event{Type: EventOutline, WindowID: c.ID(), Value: item})
	return st
}

// Search starts an asynchronous search, cancelling any in-flight search
// for this window. A cancelled search never mutates result state.
func (c *Controller) Search(query string) Status {
	if c.src == nil {
		return infoStatus("document is not searchable")
	}

	c.mu.Lock()
	if c.searchCancel != nil {
		c.searchCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.searchCancel = cancel
	c.lastQuery = query
	c.mu.Unlock()

	c.publish(Event{Type: EventSearch, WindowID: c.ID(), Value: SearchActivity{
		Query: query,
		State: SearchStarted,
	}})

	go func() {
		matches, err := c.src.Search(ctx, query)
		if ctx.Err() != nil {
			// Superseded or closed; drop the result on the floor.
			return
		}
		if err != nil {
			log.ErrorErr(log.CatSearch, "search failed", err, "window", c.ID(), "query", query)
			c.publish(Event{Type: EventSearch, WindowID: c.ID(), Value: SearchActivity{
				Query: query,
				State: SearchFailed,
			}})
			return
		}

		c.mu.Lock()
		if ctx.Err() != nil || c.closed {
			c.mu.Unlock()
			return
		}
		c.matches = matches
		c.mu.Unlock()

		c.publish(Event{Type: EventSearch, WindowID: c.ID(), Value: SearchActivity{
			Query:   query,
			State:   SearchFinished,
			Matches: matches,
		}})
	}()
	return Status{}
}

// Refresh re-renders the current page. Issuing a new render cancels the
// in-flight one; the cancellation is absorbed silently.
func (c *Controller) Refresh() {
	c.refresh()
}

func (c *Controller) refresh() {
	if c.doc == nil {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.renderCancel != nil {
		c.renderCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.renderCancel = cancel
	page := c.win.page
	zoom := c.win.zoom
	rotation := c.win.rotation
	c.mu.Unlock()

	go func() {
		frame, err := c.doc.Render(ctx, page, zoom, rotation)
		if ctx.Err() != nil || errors.Is(err, render.ErrRenderCancelled) {
			return
		}
		if err != nil {
			log.ErrorErr(log.CatRender, "render failed", err, "window", c.ID(), "page", page)
			c.publish(Event{Type: EventStatus, WindowID: c.ID(),
				Value: warnStatus("page could not be rendered")})
			return
		}

		c.mu.Lock()
		if ctx.Err() != nil || c.closed {
			c.mu.Unlock()
			return
		}
		c.frame = frame
		c.frameReady = true
		c.mu.Unlock()

		c.publish(Event{Type: EventRendered, WindowID: c.ID(), Value: page})
	}()
}

// Teardown cancels any outstanding render or search. Called by the canvas
// as part of closing the window; not an error path.
func (c *Controller) Teardown() {
	c.mu.Lock()
	c.closed = true
	if c.renderCancel != nil {
		c.renderCancel()
		c.renderCancel = nil
	}
	if c.searchCancel != nil {
		c.searchCancel()
		c.searchCancel = nil
	}
	c.mu.Unlock()
}

func (c *Controller) schedulePersist() {
	c.persist(c.Record())
}

func trimTitle(s string) string {
	return strings.TrimSpace(s)
}
