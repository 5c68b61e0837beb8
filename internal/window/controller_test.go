package window

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/folio/internal/bookmarks"
	"github.com/zjrosen/folio/internal/geometry"
	"github.com/zjrosen/folio/internal/render"
)

func newTestController(t *testing.T, pages int) (*Controller, *eventSink) {
	t.Helper()
	var body strings.Builder
	for i := 0; i < pages*40; i++ {
		body.WriteString("line\n")
	}
	doc := render.NewTextDocument("report.txt", []byte(body.String()), false)
	require.Equal(t, pages, doc.PageCount())

	sink := &eventSink{}
	win := New(KindDocument, "Report", geometry.Rect{X: 2, Y: 2, Width: 40, Height: 12})
	ctrl := NewController(win, doc, doc, Options{
		Publish:  sink.record,
		Persist:  func(Record) {},
		Viewport: func() geometry.Rect { return geometry.Rect{Width: 120, Height: 40} },
	})
	return ctrl, sink
}

type eventSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *eventSink) record(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) searchStates() []SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SearchState
	for _, e := range s.events {
		if e.Type == EventSearch {
			out = append(out, e.Value.(SearchActivity).State)
		}
	}
	return out
}

func TestSetPageClampsIntoDocument(t *testing.T) {
	ctrl, _ := newTestController(t, 12)

	ctrl.SetPage(500)
	require.Equal(t, 12, ctrl.Window().Page())

	ctrl.SetPage(-3)
	require.Equal(t, 1, ctrl.Window().Page())
}

func TestLastPageThenBackTwiceLandsOnFirstPage(t *testing.T) {
	ctrl, _ := newTestController(t, 12)

	ctrl.LastPage()
	require.Equal(t, 12, ctrl.Window().Page())

	ctrl.Back()
	require.Equal(t, 1, ctrl.Window().Page())

	// History is exhausted; a second Back stays put.
	ctrl.Back()
	require.Equal(t, 1, ctrl.Window().Page())
}

func TestHistoryTruncatesForwardBranch(t *testing.T) {
	ctrl, _ := newTestController(t, 12)

	ctrl.SetPage(2)
	ctrl.SetPage(5)
	ctrl.Back()
	require.Equal(t, 2, ctrl.Window().Page())

	ctrl.SetPage(7)
	require.False(t, ctrl.Window().History().CanForward())

	ctrl.Back()
	require.Equal(t, 2, ctrl.Window().Page())
}

func TestZoomAlwaysWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctrl, _ := newTestController(t, 3)
		z := rapid.Float64Range(-100, 100).Draw(rt, "zoom")
		ctrl.SetZoom(z)
		got := ctrl.Window().Zoom()
		if got < geometry.MinZoom || got > geometry.MaxZoom {
			rt.Fatalf("zoom %v escaped bounds", got)
		}
	})
}

func TestRotationFullCycleIsIdentity(t *testing.T) {
	ctrl, _ := newTestController(t, 3)

	for i := 0; i < 4; i++ {
		ctrl.RotateStep(1)
	}
	require.Equal(t, 0, ctrl.Window().Rotation())
}

func TestAddBookmarkOutcomes(t *testing.T) {
	ctrl, _ := newTestController(t, 12)

	st := ctrl.AddBookmark(5)
	require.True(t, st.OK())
	require.True(t, ctrl.Window().Bookmarks().Contains(5))

	st = ctrl.AddBookmark(5)
	require.False(t, st.OK())
	require.Equal(t, StatusInfo, st.Kind)
	require.Equal(t, 1, ctrl.Window().Bookmarks().Len())
}

func TestBookmarkCapacityReported(t *testing.T) {
	ctrl, _ := newTestController(t, 200)
	for p := 1; p <= bookmarks.Capacity; p++ {
		require.True(t, ctrl.AddBookmark(p).OK())
	}

	st := ctrl.AddBookmark(bookmarks.Capacity + 1)
	require.Equal(t, StatusWarn, st.Kind)
	require.Equal(t, bookmarks.Capacity, ctrl.Window().Bookmarks().Len())
}

func TestNextBookmarkDoesNotWrap(t *testing.T) {
	ctrl, _ := newTestController(t, 12)
	ctrl.SetPage(1)
	ctrl.AddBookmark(5)

	require.True(t, ctrl.NextBookmark().OK())
	require.Equal(t, 5, ctrl.Window().Page())

	// No bookmark beyond 5; the command reports and stays.
	st := ctrl.NextBookmark()
	require.False(t, st.OK())
	require.Equal(t, 5, ctrl.Window().Page())
}

func TestRenameEmptyFallsBackToDefaultTitle(t *testing.T) {
	ctrl, _ := newTestController(t, 3)

	ctrl.Rename("  Quarterly Numbers  ")
	require.Equal(t, "Quarterly Numbers", ctrl.Window().Title())

	ctrl.Rename("   ")
	require.Equal(t, ctrl.Window().DefaultTitle(), ctrl.Window().Title())
}

func TestMaximizeRejectsMoveAndResize(t *testing.T) {
	ctrl, _ := newTestController(t, 3)
	original := ctrl.Window().Bounds()

	ctrl.ToggleMaximize()
	require.True(t, ctrl.Window().Maximized())

	st := ctrl.Resize(5, 5)
	require.False(t, st.OK())
	st = ctrl.Move(3, 0)
	require.False(t, st.OK())

	ctrl.ToggleMaximize()
	require.False(t, ctrl.Window().Maximized())
	require.Equal(t, original, ctrl.Window().Bounds())
}

func TestResizeNeverShrinksBelowMinimum(t *testing.T) {
	ctrl, _ := newTestController(t, 3)

	ctrl.Resize(-1000, -1000)
	b := ctrl.Window().Bounds()
	require.GreaterOrEqual(t, b.Width, geometry.MinWidth)
	require.GreaterOrEqual(t, b.Height, geometry.MinHeight)
}

func TestDuplicateIsIndependent(t *testing.T) {
	ctrl, _ := newTestController(t, 12)
	ctrl.SetPage(4)
	ctrl.AddBookmark(4)

	dup := ctrl.Window().CloneForDuplicate(geometry.Rect{Width: 120, Height: 40})
	require.NotEqual(t, ctrl.ID(), dup.ID())
	require.Equal(t, 4, dup.Page())

	ctrl.SetPage(9)
	ctrl.AddBookmark(9)
	require.Equal(t, 4, dup.Page())
	require.False(t, dup.Bookmarks().Contains(9))
}

func TestSearchPublishesLifecycleEvents(t *testing.T) {
	ctrl, sink := newTestController(t, 3)

	ctrl.Search("line")
	require.Eventually(t, func() bool {
		return len(sink.searchStates()) == 2
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, []SearchState{SearchStarted, SearchFinished}, sink.searchStates())
	require.NotEmpty(t, ctrl.Matches())
}

// blockingSearcher parks until released, so a test can cancel mid-flight.
type blockingSearcher struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSearcher) Search(ctx context.Context, query string) ([]render.Match, error) {
	close(b.started)
	select {
	case <-b.release:
		return []render.Match{{Page: 1, Snippet: "stale"}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCancelledSearchDoesNotMutateResults(t *testing.T) {
	blocker := &blockingSearcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	win := New(KindDocument, "Report", geometry.Rect{Width: 40, Height: 12})
	doc := render.NewTextDocument("report.txt", []byte("alpha\n"), false)
	ctrl := NewController(win, doc, blocker, Options{})

	ctrl.Search("alpha")
	<-blocker.started

	// Teardown cancels the in-flight search before it completes.
	ctrl.Teardown()
	close(blocker.release)

	require.Never(t, func() bool {
		return len(ctrl.Matches()) != 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestFitZoomFitPageUsesTighterAxis(t *testing.T) {
	ctrl, _ := newTestController(t, 3)

	// Content area is 38x10 against a natural page of 80x40, so the
	// height ratio (0.25) wins over the width ratio.
	st := ctrl.FitZoom(FitPage)
	require.True(t, st.OK())
	require.Equal(t, 0.25, ctrl.Window().Zoom())
}

func TestGoToOutlineJumpsToHeadingPage(t *testing.T) {
	var body strings.Builder
	body.WriteString("# Intro\n")
	for i := 0; i < 80; i++ {
		body.WriteString("text\n")
	}
	body.WriteString("## Details\nmore\n")
	doc := render.NewTextDocument("guide.md", []byte(body.String()), true)

	sink := &eventSink{}
	win := New(KindDocument, "Guide", geometry.Rect{Width: 40, Height: 12})
	ctrl := NewController(win, doc, doc, Options{Publish: sink.record})

	outline := doc.Outline()
	require.Len(t, outline, 2)
	require.Greater(t, outline[1].Page, 1)

	st := ctrl.GoToOutline(outline[1])
	require.True(t, st.OK())
	require.Equal(t, outline[1].Page, ctrl.Window().Page())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	var jumped bool
	for _, e := range sink.events {
		if e.Type == EventOutline {
			jumped = true
			require.Equal(t, outline[1], e.Value)
		}
	}
	require.True(t, jumped)
}

func TestGoToOutlineRejectsPagelessEntry(t *testing.T) {
	ctrl, _ := newTestController(t, 3)

	st := ctrl.GoToOutline(render.OutlineItem{Title: "Orphan"})
	require.False(t, st.OK())
	require.Equal(t, 1, ctrl.Window().Page())
}

func TestFitZoomWithoutMetricsIsReportedNoOp(t *testing.T) {
	win := New(KindMemo, "Memo", geometry.Rect{Width: 40, Height: 12})
	ctrl := NewController(win, noMetricsDoc{}, nil, Options{})
	before := ctrl.Window().Zoom()

	st := ctrl.FitZoom(FitWidth)
	require.False(t, st.OK())
	require.Equal(t, before, ctrl.Window().Zoom())
}

type noMetricsDoc struct{}

func (noMetricsDoc) Render(ctx context.Context, page int, zoom float64, rotation int) (render.Frame, error) {
	return render.Frame{Page: page}, nil
}
func (noMetricsDoc) NaturalPageSize(int) (render.Size, bool) { return render.Size{}, false }
func (noMetricsDoc) Outline() []render.OutlineItem           { return nil }
func (noMetricsDoc) PageText(int) (string, error)            { return "", nil }
func (noMetricsDoc) PageCount() int                          { return 1 }
