package window

import "github.com/zjrosen/folio/internal/render"

// EventType names a state-change category. One event is published per
// category, carrying the affected window's identifier and the new value.
// This is the sole notification channel between the core and the shell.
type EventType string

const (
	EventOpened         EventType = "opened"
	EventPage           EventType = "page"
	EventZoom           EventType = "zoom"
	EventRotation       EventType = "rotation"
	EventBookmarks      EventType = "bookmarks-changed"
	EventBookmarkJumped EventType = "bookmark-jumped"
	EventTitle          EventType = "title-changed"
	EventColor          EventType = "color-changed"
	EventNotes          EventType = "notes-changed"
	EventMaximize       EventType = "maximize-changed"
	EventPin            EventType = "pin-toggled"
	EventMoved          EventType = "moved"
	EventResized        EventType = "resized"
	EventDuplicated     EventType = "duplicated"
	EventClosed         EventType = "closed"
	EventFocusChanged   EventType = "focus-changed"
	EventFocusCycled    EventType = "focus-cycled"
	EventSearch         EventType = "search-activity"
	EventOutline        EventType = "outline-navigated"
	EventRendered       EventType = "rendered"
	EventStatus         EventType = "status"
)

// Event is one domain notification. Value holds the new value for the
// changed category:
//
//	page            int
//	zoom            float64
//	rotation        int
//	bookmarks       []int
//	bookmark-jumped int (target page)
//	title/notes     string
//	color           Color
//	maximize/pin    bool
//	moved/resized   geometry.Rect
//	duplicated      string (new window id)
//	search-activity SearchActivity
//	outline         render.OutlineItem
//	rendered        int (page)
//	status          Status
type Event struct {
	Type     EventType
	WindowID string
	Value    any
}

// SearchActivity is the payload of a search-activity event.
type SearchActivity struct {
	Query   string
	State   SearchState
	Matches []render.Match
}

// SearchState is the phase of a search reported in a search-activity event.
type SearchState string

const (
	SearchStarted  SearchState = "started"
	SearchFinished SearchState = "finished"
	SearchFailed   SearchState = "failed"
)

// StatusKind grades a status outcome.
type StatusKind int

const (
	StatusOK StatusKind = iota
	StatusInfo
	StatusWarn
)

// Status is the outcome of a UI-facing command. Commands never return
// errors past the controller; out-of-range input and non-fatal conditions
// resolve to a Status instead. The zero value means "done, nothing to say".
type Status struct {
	Kind    StatusKind
	Message string
}

// OK reports whether the command completed without a message.
func (s Status) OK() bool { return s.Kind == StatusOK && s.Message == "" }

func infoStatus(msg string) Status { return Status{Kind: StatusInfo, Message: msg} }
func warnStatus(msg string) Status { return Status{Kind: StatusWarn, Message: msg} }
