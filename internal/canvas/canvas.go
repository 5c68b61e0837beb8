// Package canvas manages the set of open windows: their stacking order,
// focus, and lifecycle. Ordering uses a logical clock rather than wall
// time so rapid focus changes stay deterministic.
package canvas

import (
	"errors"
	"sort"
	"sync"

	"github.com/zjrosen/folio/internal/geometry"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
	"github.com/zjrosen/folio/internal/render"
	"github.com/zjrosen/folio/internal/window"
)

// ErrNoSuchWindow is returned when an operation names a window id that is
// not open on the canvas.
var ErrNoSuchWindow = errors.New("no such window")

// Sink receives persistence requests from the canvas. The canvas never
// talks to storage directly.
type Sink interface {
	// Save schedules a write of the window's record.
	Save(rec window.Record)
	// Delete removes the window's persisted record.
	Delete(id string)
}

// nopSink discards persistence requests; used for ephemeral sessions.
type nopSink struct{}

func (nopSink) Save(window.Record) {}
func (nopSink) Delete(string)      {}

type entry struct {
	ctrl  *window.Controller
	stamp uint64
}

// Canvas is the window registry. All exported methods are safe for
// concurrent use.
type Canvas struct {
	mu       sync.Mutex
	entries  map[string]*entry
	clock    uint64
	activeID string

	viewport geometry.Rect
	sink     Sink
	broker   *pubsub.Broker[window.Event]
}

// New builds an empty canvas persisting through sink. A nil sink means
// windows are not persisted.
func New(viewport geometry.Rect, sink Sink) *Canvas {
	if sink == nil {
		sink = nopSink{}
	}
	return &Canvas{
		entries:  make(map[string]*entry),
		viewport: viewport,
		sink:     sink,
		broker:   pubsub.NewBroker[window.Event](),
	}
}

// Broker exposes the canvas event stream for subscribers.
func (c *Canvas) Broker() *pubsub.Broker[window.Event] { return c.broker }

// Viewport returns the current canvas rectangle.
func (c *Canvas) Viewport() geometry.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// SetViewport resizes the canvas and clamps every window back inside it.
func (c *Canvas) SetViewport(vp geometry.Rect) {
	c.mu.Lock()
	c.viewport = vp
	ctrls := make([]*window.Controller, 0, len(c.entries))
	for _, e := range c.entries {
		ctrls = append(ctrls, e.ctrl)
	}
	c.mu.Unlock()

	for _, ctrl := range ctrls {
		if ctrl.Window().Maximized() {
			continue
		}
		ctrl.Move(0, 0)
	}
}

// Open creates a window and its controller, wires it to the canvas event
// stream, and focuses it.
func (c *Canvas) Open(kind window.Kind, title string, bounds geometry.Rect, doc render.Renderer, src render.Searcher) (*window.Controller, error) {
	if !kind.Valid() {
		return nil, window.ErrInvalidKind
	}

	c.mu.Lock()
	vp := c.viewport
	c.mu.Unlock()

	win := window.New(kind, title, bounds.ClampTo(vp))
	ctrl := c.attach(win, doc, src)

	log.Info(log.CatCanvas, "window opened", "id", win.ID(), "kind", string(kind), "title", title)
	c.broker.Publish(window.Event{Type: window.EventOpened, WindowID: win.ID()})
	c.sink.Save(ctrl.Record())
	c.BringToFront(win.ID())
	ctrl.Refresh()
	return ctrl, nil
}

// OpenFromRecord reconstitutes a persisted window. The record's stored
// geometry and reading state survive the round trip; invalid values have
// already been corrected by the record decoder.
func (c *Canvas) OpenFromRecord(rec window.Record, doc render.Renderer, src render.Searcher) (*window.Controller, error) {
	win, err := window.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	ctrl := c.attach(win, doc, src)
	log.Info(log.CatCanvas, "window restored", "id", win.ID(), "title", win.Title())
	c.broker.Publish(window.Event{Type: window.EventOpened, WindowID: win.ID()})
	ctrl.Refresh()
	return ctrl, nil
}

func (c *Canvas) attach(win *window.Window, doc render.Renderer, src render.Searcher) *window.Controller {
	ctrl := window.NewController(win, doc, src, window.Options{
		Publish: c.broker.Publish,
		Persist: c.sink.Save,
		Viewport: func() geometry.Rect {
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.viewport
		},
	})

	c.mu.Lock()
	c.clock++
	c.entries[win.ID()] = &entry{ctrl: ctrl, stamp: c.clock}
	c.mu.Unlock()
	return ctrl
}

// Duplicate clones the window into an offset copy with fresh identity and
// an independent history and bookmark set, then focuses the copy.
func (c *Canvas) Duplicate(id string) (*window.Controller, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	vp := c.viewport
	c.mu.Unlock()
	if !ok {
		return nil, ErrNoSuchWindow
	}

	dup := e.ctrl.Window().CloneForDuplicate(vp)
	ctrl := c.attach(dup, e.ctrl.Doc(), e.ctrl.Searcher())

	log.Info(log.CatCanvas, "window duplicated", "source", id, "copy", dup.ID())
	c.broker.Publish(window.Event{Type: window.EventDuplicated, WindowID: dup.ID(), Value: id})
	c.sink.Save(ctrl.Record())
	c.BringToFront(dup.ID())
	ctrl.Refresh()
	return ctrl, nil
}

// Controller returns the controller for id.
func (c *Canvas) Controller(id string) (*window.Controller, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.ctrl, true
}

// Active returns the focused controller, or nil with false when the
// canvas is empty.
func (c *Canvas) Active() (*window.Controller, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[c.activeID]
	if !ok {
		return nil, false
	}
	return e.ctrl, true
}

// Len returns the number of open windows.
func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// BringToFront focuses the window and raises it to the top of its tier.
// Pinned windows always stack above unpinned ones regardless of recency.
func (c *Canvas) BringToFront(id string) bool {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.clock++
	e.stamp = c.clock
	c.activeID = id
	e.ctrl.Window().Touch()
	rec := e.ctrl.Record()
	c.mu.Unlock()

	c.broker.Publish(window.Event{Type: window.EventFocusChanged, WindowID: id})
	c.sink.Save(rec)
	return true
}

// CycleFocus focuses the next (or previous) window in stacking order,
// wrapping at the ends.
func (c *Canvas) CycleFocus(forward bool) (string, bool) {
	order := c.ZOrder()
	if len(order) == 0 {
		return "", false
	}

	c.mu.Lock()
	active := c.activeID
	c.mu.Unlock()

	idx := -1
	for i, id := range order {
		if id == active {
			idx = i
			break
		}
	}
	var next string
	if idx < 0 {
		next = order[len(order)-1]
	} else if forward {
		next = order[(idx+1)%len(order)]
	} else {
		next = order[(idx-1+len(order))%len(order)]
	}

	c.BringToFront(next)
	c.broker.Publish(window.Event{Type: window.EventFocusCycled, WindowID: next})
	return next, true
}

// ZOrder returns window ids bottom to top. Unpinned windows come first,
// pinned windows above them, each tier ordered by raise recency.
func (c *Canvas) ZOrder() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	type ranked struct {
		id     string
		pinned bool
		stamp  uint64
	}
	all := make([]ranked, 0, len(c.entries))
	for id, e := range c.entries {
		all = append(all, ranked{id: id, pinned: e.ctrl.Window().Pinned(), stamp: e.stamp})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].pinned != all[j].pinned {
			return !all[i].pinned
		}
		return all[i].stamp < all[j].stamp
	})

	out := make([]string, len(all))
	for i, r := range all {
		out[i] = r.id
	}
	return out
}

// CloseWindow tears the window down and removes it. When forget is true
// its persisted record is deleted as well; session shutdown passes false
// so the window comes back on restore.
func (c *Canvas) CloseWindow(id string, forget bool) bool {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	delete(c.entries, id)
	wasActive := c.activeID == id
	if wasActive {
		c.activeID = ""
	}
	c.mu.Unlock()

	e.ctrl.Teardown()
	if forget {
		c.sink.Delete(id)
	} else {
		c.sink.Save(e.ctrl.Record())
	}

	log.Info(log.CatCanvas, "window closed", "id", id, "forget", forget)
	c.broker.Publish(window.Event{Type: window.EventClosed, WindowID: id})

	if wasActive {
		if order := c.ZOrder(); len(order) > 0 {
			c.BringToFront(order[len(order)-1])
		}
	}
	return true
}

// CloseAll closes every window. forget carries the same meaning as in
// CloseWindow.
func (c *Canvas) CloseAll(forget bool) {
	for _, id := range c.ZOrder() {
		c.CloseWindow(id, forget)
	}
}

// Records returns the serializable projection of every open window.
func (c *Canvas) Records() []window.Record {
	c.mu.Lock()
	ctrls := make([]*window.Controller, 0, len(c.entries))
	for _, e := range c.entries {
		ctrls = append(ctrls, e.ctrl)
	}
	c.mu.Unlock()

	recs := make([]window.Record, len(ctrls))
	for i, ctrl := range ctrls {
		recs[i] = ctrl.Record()
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

// DocFactory resolves a record to the renderer and searcher for its
// document. Returning a nil renderer opens the window without content.
type DocFactory func(rec window.Record) (render.Renderer, render.Searcher)

// Restore reopens a set of persisted windows. Windows are attached in
// lastFocusedAt order so the most recently used one ends up focused and
// on top of its tier. Records that fail to decode are skipped and
// counted, not fatal.
func (c *Canvas) Restore(recs []window.Record, factory DocFactory) (restored, skipped int) {
	sorted := make([]window.Record, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastFocusedAt.Before(sorted[j].LastFocusedAt)
	})

	for _, rec := range sorted {
		doc, src := factory(rec)
		ctrl, err := c.OpenFromRecord(rec, doc, src)
		if err != nil {
			log.Warn(log.CatCanvas, "skipping unrestorable window", "id", rec.ID, "err", err.Error())
			skipped++
			continue
		}
		c.BringToFront(ctrl.ID())
		restored++
	}
	return restored, skipped
}
