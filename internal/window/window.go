// Package window provides the window entity, its serializable record, and
// the controller that owns one window's interactive state.
//
// A Window is the single source of truth for one pane's persisted state:
// geometry, page position, zoom, rotation, title, color, notes, navigation
// history, bookmarks, and the pinned/maximized flags. The transient parts
// (rendered frame, in-flight search) live on the Controller.
package window

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/folio/internal/bookmarks"
	"github.com/zjrosen/folio/internal/geometry"
	"github.com/zjrosen/folio/internal/history"
)

// ErrInvalidKind is returned when a window kind is not one of the
// recognized values.
var ErrInvalidKind = errors.New("invalid window kind")

// Kind selects which controller variant owns a window.
type Kind string

const (
	KindDocument      Kind = "document"
	KindMemo          Kind = "memo"
	KindBookmarkIndex Kind = "bookmark-index"
)

// Valid reports whether k is a recognized window kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDocument, KindMemo, KindBookmarkIndex:
		return true
	default:
		return false
	}
}

// Color is one entry of the fixed accent palette.
type Color string

// Palette is the fixed cycle order for window accent colors.
var Palette = []Color{"slate", "red", "amber", "green", "teal", "blue", "violet", "rose"}

// Next returns the palette color after c, wrapping at the end. Unknown
// colors restart at the first entry.
func (c Color) Next() Color {
	for i, p := range Palette {
		if p == c {
			return Palette[(i+1)%len(Palette)]
		}
	}
	return Palette[0]
}

// Valid reports whether c belongs to the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// MaxLayoutDepth bounds the nesting of the caller-owned layout bag.
const MaxLayoutDepth = 4

// Window holds one pane's persisted state. Fields are unexported; mutate
// through the Controller and read through getters or Record.
type Window struct {
	id           string
	kind         Kind
	title        string
	defaultTitle string
	color        Color
	notes        string

	page     int
	zoom     float64
	rotation int

	hist  *history.History
	marks *bookmarks.Set

	pinned    bool
	maximized bool

	bounds        geometry.Rect
	restoreBounds geometry.Rect

	openedAt      time.Time
	lastFocusedAt time.Time

	payloadRef string
	layout     map[string]any
}

// New creates a window with a fresh identifier and defaults: page 1, zoom
// 1.0, no rotation, the first palette color. title doubles as the default
// title used when a rename is cleared.
func New(kind Kind, title string, bounds geometry.Rect) *Window {
	now := time.Now()
	return &Window{
		id:            uuid.NewString(),
		kind:          kind,
		title:         title,
		defaultTitle:  title,
		color:         Palette[0],
		page:          1,
		zoom:          geometry.DefaultZoom,
		hist:          history.New(1),
		marks:         bookmarks.New(),
		bounds:        bounds,
		restoreBounds: bounds,
		openedAt:      now,
		lastFocusedAt: now,
	}
}

// ID returns the stable identifier, assigned at creation and never reused.
func (w *Window) ID() string { return w.id }

// Kind returns the window kind.
func (w *Window) Kind() Kind { return w.kind }

// Title returns the current title.
func (w *Window) Title() string { return w.title }

// DefaultTitle returns the fallback title derived from the document name.
func (w *Window) DefaultTitle() string { return w.defaultTitle }

// Color returns the current accent color.
func (w *Window) Color() Color { return w.color }

// Notes returns the free-text notes.
func (w *Window) Notes() string { return w.notes }

// Page returns the current 1-indexed page.
func (w *Window) Page() int { return w.page }

// Zoom returns the current zoom factor.
func (w *Window) Zoom() float64 { return w.zoom }

// Rotation returns the rotation in degrees, one of 0, 90, 180, 270.
func (w *Window) Rotation() int { return w.rotation }

// History returns the navigation history (owned by the window).
func (w *Window) History() *history.History { return w.hist }

// Bookmarks returns the bookmark set (owned by the window).
func (w *Window) Bookmarks() *bookmarks.Set { return w.marks }

// Pinned reports whether the window sits in the pinned focus tier.
func (w *Window) Pinned() bool { return w.pinned }

// Maximized reports whether the window is maximized.
func (w *Window) Maximized() bool { return w.maximized }

// Bounds returns the window rectangle.
func (w *Window) Bounds() geometry.Rect { return w.bounds }

// RestoreBounds returns the rectangle captured before maximizing.
func (w *Window) RestoreBounds() geometry.Rect { return w.restoreBounds }

// OpenedAt returns when the window was opened.
func (w *Window) OpenedAt() time.Time { return w.openedAt }

// LastFocusedAt returns when the window was last brought to front.
func (w *Window) LastFocusedAt() time.Time { return w.lastFocusedAt }

// PayloadRef returns the key of the document bytes in the store.
func (w *Window) PayloadRef() string { return w.payloadRef }

// Layout returns the opaque caller-owned layout bag.
func (w *Window) Layout() map[string]any { return w.layout }

// SetPayloadRef points the window at its stored document bytes.
func (w *Window) SetPayloadRef(ref string) { w.payloadRef = ref }

// SetLayout replaces the layout bag after sanitizing it.
func (w *Window) SetLayout(layout map[string]any) { w.layout = SanitizeLayout(layout) }

// Touch records a focus timestamp.
func (w *Window) Touch() { w.lastFocusedAt = time.Now() }

// CloneForDuplicate returns an independent copy seeded with the receiver's
// state: same page, zoom, rotation, history, bookmarks, notes, title, and
// color, with a fresh identifier and cascaded bounds. Nothing mutable is
// shared with the source.
func (w *Window) CloneForDuplicate(container geometry.Rect) *Window {
	now := time.Now()
	dup := &Window{
		id:            uuid.NewString(),
		kind:          w.kind,
		title:         w.title,
		defaultTitle:  w.defaultTitle,
		color:         w.color,
		notes:         w.notes,
		page:          w.page,
		zoom:          w.zoom,
		rotation:      w.rotation,
		hist:          w.hist.Clone(),
		marks:         w.marks.Clone(),
		pinned:        w.pinned,
		bounds:        geometry.OffsetForDuplicate(w.bounds, container),
		openedAt:      now,
		lastFocusedAt: now,
		payloadRef:    w.payloadRef,
		layout:        SanitizeLayout(w.layout),
	}
	dup.restoreBounds = dup.bounds
	return dup
}

// SanitizeLayout returns a deep copy of layout keeping only JSON-safe
// values (nil, bool, string, numbers, nested maps and slices) down to
// MaxLayoutDepth. Anything else is dropped.
func SanitizeLayout(layout map[string]any) map[string]any {
	if layout == nil {
		return nil
	}
	out, ok := sanitizeValue(layout, 1).(map[string]any)
	if !ok {
		return nil
	}
	return out
}

func sanitizeValue(v any, depth int) any {
	if depth > MaxLayoutDepth {
		return nil
	}
	switch val := v.(type) {
	case nil, bool, string, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if clean := sanitizeValue(inner, depth+1); clean != nil || inner == nil {
				out[k] = clean
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, inner := range val {
			if clean := sanitizeValue(inner, depth+1); clean != nil || inner == nil {
				out = append(out, clean)
			}
		}
		return out
	default:
		return nil
	}
}
