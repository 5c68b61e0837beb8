// Package history implements a bounded page-navigation history: a sequence
// of visited pages with a cursor, supporting back/forward movement and
// append-with-truncation when a new page is visited mid-history.
package history

// Capacity is the maximum number of entries kept. When exceeded, the
// oldest entries are trimmed and the cursor shifts down accordingly.
const Capacity = 50

// History is a stack-with-cursor over page numbers. The zero value is not
// usable; construct with New or Reconstitute.
type History struct {
	pages []int
	idx   int
}

// New returns a history seeded with the starting page.
func New(start int) *History {
	return &History{pages: []int{start}, idx: 0}
}

// Reconstitute rebuilds a history from persisted state. An empty sequence
// falls back to a single entry for fallback; an out-of-range cursor is
// clamped into the sequence.
func Reconstitute(pages []int, idx int, fallback int) *History {
	if len(pages) == 0 {
		return New(fallback)
	}
	cp := make([]int, len(pages))
	copy(cp, pages)
	if len(cp) > Capacity {
		drop := len(cp) - Capacity
		cp = cp[drop:]
		idx -= drop
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(cp) {
		idx = len(cp) - 1
	}
	return &History{pages: cp, idx: idx}
}

// Record appends page at the cursor. Any abandoned forward branch is
// truncated first. Recording the page already under the cursor is a no-op
// so consecutive duplicates never appear.
func (h *History) Record(page int) {
	if h.pages[h.idx] == page {
		return
	}
	h.pages = append(h.pages[:h.idx+1], page)
	h.idx = len(h.pages) - 1

	if len(h.pages) > Capacity {
		drop := len(h.pages) - Capacity
		h.pages = h.pages[drop:]
		h.idx -= drop
		if h.idx < 0 {
			h.idx = 0
		}
	}
}

// Back moves the cursor one step back and returns the page there.
// Returns false without moving when already at the oldest entry.
func (h *History) Back() (int, bool) {
	return h.Seek(-1)
}

// Forward moves the cursor one step forward and returns the page there.
// Returns false without moving when already at the newest entry.
func (h *History) Forward() (int, bool) {
	return h.Seek(1)
}

// Seek moves the cursor by offset steps. Out-of-range offsets are a no-op
// returning false; the cursor never leaves the sequence.
func (h *History) Seek(offset int) (int, bool) {
	target := h.idx + offset
	if target < 0 || target >= len(h.pages) || offset == 0 {
		return h.pages[h.idx], false
	}
	h.idx = target
	return h.pages[h.idx], true
}

// Current returns the page under the cursor.
func (h *History) Current() int {
	return h.pages[h.idx]
}

// CanBack reports whether a Back call would move the cursor.
func (h *History) CanBack() bool {
	return h.idx > 0
}

// CanForward reports whether a Forward call would move the cursor.
func (h *History) CanForward() bool {
	return h.idx < len(h.pages)-1
}

// Pages returns a copy of the recorded sequence.
func (h *History) Pages() []int {
	cp := make([]int, len(h.pages))
	copy(cp, h.pages)
	return cp
}

// Index returns the cursor position within Pages.
func (h *History) Index() int {
	return h.idx
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.pages)
}

// Clone returns an independent copy sharing no state with the receiver.
func (h *History) Clone() *History {
	return Reconstitute(h.pages, h.idx, h.pages[h.idx])
}
