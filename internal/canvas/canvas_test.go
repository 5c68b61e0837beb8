package canvas

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/folio/internal/geometry"
	"github.com/zjrosen/folio/internal/render"
	"github.com/zjrosen/folio/internal/window"
)

func testViewport() geometry.Rect {
	return geometry.Rect{Width: 120, Height: 40}
}

func testDoc(t *testing.T) *render.TextDocument {
	t.Helper()
	return render.NewTextDocument("notes.txt", []byte("alpha\nbeta\ngamma\n"), false)
}

type memorySink struct {
	mu    sync.Mutex
	saved map[string]window.Record
}

func newMemorySink() *memorySink {
	return &memorySink{saved: make(map[string]window.Record)}
}

func (s *memorySink) Save(rec window.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[rec.ID] = rec
}

func (s *memorySink) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, id)
}

func (s *memorySink) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[id]
	return ok
}

func openThree(t *testing.T, c *Canvas) []*window.Controller {
	t.Helper()
	doc := testDoc(t)
	out := make([]*window.Controller, 3)
	for i, title := range []string{"one", "two", "three"} {
		ctrl, err := c.Open(window.KindDocument, title, geometry.Rect{X: i * 4, Y: i * 2, Width: 40, Height: 12}, doc, doc)
		require.NoError(t, err)
		out[i] = ctrl
	}
	return out
}

func TestOpenFocusesNewWindow(t *testing.T) {
	c := New(testViewport(), nil)
	ctrls := openThree(t, c)

	active, ok := c.Active()
	require.True(t, ok)
	require.Equal(t, ctrls[2].ID(), active.ID())

	order := c.ZOrder()
	require.Equal(t, ctrls[2].ID(), order[len(order)-1])
}

func TestBringToFrontReordersExactlyOne(t *testing.T) {
	c := New(testViewport(), nil)
	ctrls := openThree(t, c)

	require.True(t, c.BringToFront(ctrls[0].ID()))

	order := c.ZOrder()
	require.Equal(t, []string{ctrls[1].ID(), ctrls[2].ID(), ctrls[0].ID()}, order)

	active, ok := c.Active()
	require.True(t, ok)
	require.Equal(t, ctrls[0].ID(), active.ID())
}

func TestPinnedWindowsStackAboveUnpinned(t *testing.T) {
	c := New(testViewport(), nil)
	ctrls := openThree(t, c)

	ctrls[0].TogglePin()
	order := c.ZOrder()
	require.Equal(t, ctrls[0].ID(), order[len(order)-1])

	// Raising an unpinned window keeps it under the pinned tier.
	c.BringToFront(ctrls[1].ID())
	order = c.ZOrder()
	require.Equal(t, ctrls[0].ID(), order[len(order)-1])
	require.Equal(t, ctrls[1].ID(), order[len(order)-2])
}

func TestPinnedTierHoldsUnderArbitraryFocusSequences(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := New(testViewport(), nil)
		ctrls := openThree(t, c)

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			target := ctrls[rapid.IntRange(0, len(ctrls)-1).Draw(rt, "target")]
			if rapid.Bool().Draw(rt, "pin") {
				target.TogglePin()
			} else {
				c.BringToFront(target.ID())
			}
		}

		// Scanning bottom to top, once a pinned window appears no
		// unpinned window may appear above it.
		seenPinned := false
		for _, id := range c.ZOrder() {
			ctrl, ok := c.Controller(id)
			require.True(rt, ok)
			pinned := ctrl.Window().Pinned()
			if seenPinned && !pinned {
				rt.Fatalf("unpinned window %s above the pinned tier", id)
			}
			seenPinned = seenPinned || pinned
		}
	})
}

func TestCycleFocusWraps(t *testing.T) {
	c := New(testViewport(), nil)
	openThree(t, c)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, ok := c.CycleFocus(true)
		require.True(t, ok)
		seen[id] = true
	}
	require.Len(t, seen, 3)

	// One more full cycle returns to the same window.
	first, _ := c.CycleFocus(true)
	for i := 0; i < 2; i++ {
		c.CycleFocus(true)
	}
	again, _ := c.CycleFocus(true)
	require.Equal(t, first, again)
}

func TestCloseWindowFocusFallsToTopmost(t *testing.T) {
	c := New(testViewport(), nil)
	ctrls := openThree(t, c)

	require.True(t, c.CloseWindow(ctrls[2].ID(), true))

	active, ok := c.Active()
	require.True(t, ok)
	require.Equal(t, ctrls[1].ID(), active.ID())
	require.Equal(t, 2, c.Len())
}

func TestCloseForgetDeletesPersistedRecord(t *testing.T) {
	sink := newMemorySink()
	c := New(testViewport(), sink)
	ctrls := openThree(t, c)

	require.True(t, sink.has(ctrls[0].ID()))
	c.CloseWindow(ctrls[0].ID(), true)
	require.False(t, sink.has(ctrls[0].ID()))

	// Session shutdown keeps the record for restore.
	c.CloseWindow(ctrls[1].ID(), false)
	require.True(t, sink.has(ctrls[1].ID()))
}

func TestDuplicateOffsetsAndIsolates(t *testing.T) {
	c := New(testViewport(), nil)
	doc := testDoc(t)
	src, err := c.Open(window.KindDocument, "orig", geometry.Rect{X: 10, Y: 5, Width: 40, Height: 12}, doc, doc)
	require.NoError(t, err)

	dup, err := c.Duplicate(src.ID())
	require.NoError(t, err)
	require.NotEqual(t, src.ID(), dup.ID())

	sb, db := src.Window().Bounds(), dup.Window().Bounds()
	require.Equal(t, sb.X+2, db.X)
	require.Equal(t, sb.Y+1, db.Y)

	src.AddBookmark(1)
	require.False(t, dup.Window().Bookmarks().Contains(1))

	_, err = c.Duplicate("missing")
	require.ErrorIs(t, err, ErrNoSuchWindow)
}

func TestRestoreOrdersByRecency(t *testing.T) {
	sink := newMemorySink()
	c := New(testViewport(), sink)
	ctrls := openThree(t, c)

	// Make the first window the most recently focused.
	time.Sleep(2 * time.Millisecond)
	c.BringToFront(ctrls[0].ID())
	mostRecent := ctrls[0].ID()

	recs := c.Records()
	c.CloseAll(false)
	require.Equal(t, 0, c.Len())

	c2 := New(testViewport(), nil)
	doc := testDoc(t)
	restored, skipped := c2.Restore(recs, func(window.Record) (render.Renderer, render.Searcher) {
		return doc, doc
	})
	require.Equal(t, 3, restored)
	require.Equal(t, 0, skipped)

	active, ok := c2.Active()
	require.True(t, ok)
	require.Equal(t, mostRecent, active.ID())
}

func TestRestoreSkipsUndecodableRecords(t *testing.T) {
	c := New(testViewport(), nil)
	doc := testDoc(t)

	recs := []window.Record{
		{ID: "bad", Kind: "spreadsheet"},
		{ID: "good", Kind: window.KindMemo, Title: "Memo", Zoom: 1, Page: 1,
			Bounds: geometry.Rect{Width: 40, Height: 12}},
	}
	restored, skipped := c.Restore(recs, func(window.Record) (render.Renderer, render.Searcher) {
		return doc, doc
	})
	require.Equal(t, 1, restored)
	require.Equal(t, 1, skipped)
	require.Equal(t, 1, c.Len())
}

func TestSetViewportClampsWindowsBackInside(t *testing.T) {
	c := New(testViewport(), nil)
	doc := testDoc(t)
	ctrl, err := c.Open(window.KindDocument, "wide", geometry.Rect{X: 70, Y: 30, Width: 40, Height: 12}, doc, doc)
	require.NoError(t, err)

	c.SetViewport(geometry.Rect{Width: 60, Height: 20})

	b := ctrl.Window().Bounds()
	require.LessOrEqual(t, b.X+b.Width, 60)
	require.LessOrEqual(t, b.Y+b.Height, 20)
}
