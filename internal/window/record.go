package window

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/folio/internal/bookmarks"
	"github.com/zjrosen/folio/internal/geometry"
	"github.com/zjrosen/folio/internal/history"
)

// Record is the durable, serializable projection of a window. It carries
// everything that survives a restart; transient UI state (rendered frame,
// search results, focus) is excluded.
type Record struct {
	ID               string         `json:"id"`
	Kind             Kind           `json:"windowType"`
	Title            string         `json:"title"`
	DefaultTitle     string         `json:"defaultTitle,omitempty"`
	Color            Color          `json:"color"`
	Notes            string         `json:"notes,omitempty"`
	Page             int            `json:"page"`
	Zoom             float64        `json:"zoom"`
	Rotation         int            `json:"rotation"`
	PageHistory      []int          `json:"pageHistory"`
	PageHistoryIndex int            `json:"pageHistoryIndex"`
	Bookmarks        []int          `json:"bookmarks"`
	Pinned           bool           `json:"pinned"`
	Maximized        bool           `json:"maximized"`
	Bounds           geometry.Rect  `json:"bounds"`
	RestoreBounds    geometry.Rect  `json:"restoreBounds"`
	OpenedAt         time.Time      `json:"openedAt"`
	LastFocusedAt    time.Time      `json:"lastFocusedAt"`
	PayloadRef       string         `json:"payloadRef,omitempty"`
	Layout           map[string]any `json:"layout,omitempty"`
}

// Record returns the window's serializable projection.
func (w *Window) Record() Record {
	return Record{
		ID:               w.id,
		Kind:             w.kind,
		Title:            w.title,
		DefaultTitle:     w.defaultTitle,
		Color:            w.color,
		Notes:            w.notes,
		Page:             w.page,
		Zoom:             w.zoom,
		Rotation:         w.rotation,
		PageHistory:      w.hist.Pages(),
		PageHistoryIndex: w.hist.Index(),
		Bookmarks:        w.marks.Pages(),
		Pinned:           w.pinned,
		Maximized:        w.maximized,
		Bounds:           w.bounds,
		RestoreBounds:    w.restoreBounds,
		OpenedAt:         w.openedAt,
		LastFocusedAt:    w.lastFocusedAt,
		PayloadRef:       w.payloadRef,
		Layout:           SanitizeLayout(w.layout),
	}
}

// FromRecord rehydrates a window from its stored projection. Out-of-range
// values are corrected rather than rejected: zoom and rotation are
// normalized, the page is floored at 1, and the history cursor is clamped
// into its sequence. A missing id gets a fresh one; an unknown color falls
// back to the palette head.
func FromRecord(rec Record) (*Window, error) {
	if !rec.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, rec.Kind)
	}
	w := New(rec.Kind, rec.Title, rec.Bounds)
	if rec.ID != "" {
		w.id = rec.ID
	}
	if rec.DefaultTitle != "" {
		w.defaultTitle = rec.DefaultTitle
	}
	if rec.Color.Valid() {
		w.color = rec.Color
	}
	w.notes = rec.Notes
	w.page = geometry.ClampPage(rec.Page, 0)
	w.zoom = geometry.ClampZoom(rec.Zoom)
	w.rotation = geometry.NormalizeRotation(rec.Rotation)
	w.hist = history.Reconstitute(rec.PageHistory, rec.PageHistoryIndex, w.page)
	w.marks = bookmarks.Reconstitute(rec.Bookmarks)
	w.pinned = rec.Pinned
	w.maximized = rec.Maximized
	w.restoreBounds = rec.RestoreBounds
	if !rec.OpenedAt.IsZero() {
		w.openedAt = rec.OpenedAt
	}
	if !rec.LastFocusedAt.IsZero() {
		w.lastFocusedAt = rec.LastFocusedAt
	}
	w.payloadRef = rec.PayloadRef
	w.layout = SanitizeLayout(rec.Layout)
	return w, nil
}

// Fields converts the record to a JSON-safe field map, the unit the
// persistent store merges on.
func (r Record) Fields() (map[string]any, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding window record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding window record fields: %w", err)
	}
	return fields, nil
}

// RecordFromFields rebuilds a record from a stored field map.
func RecordFromFields(fields map[string]any) (Record, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("encoding stored fields: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding stored fields: %w", err)
	}
	return rec, nil
}
