// Package bookmarks implements a sorted, deduplicated, capacity-bounded
// set of page numbers with nearest-neighbor queries.
package bookmarks

import "sort"

// Capacity is the maximum number of bookmarks per window.
const Capacity = 64

// AddResult describes the outcome of an Add call. Duplicates and
// over-capacity additions are distinct, reportable outcomes rather than
// errors.
type AddResult int

const (
	Added AddResult = iota
	Duplicate
	AtCapacity
	InvalidPage
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	case AtCapacity:
		return "at capacity"
	case InvalidPage:
		return "invalid page"
	default:
		return "unknown"
	}
}

// Set holds bookmarked pages in ascending order.
type Set struct {
	pages []int
}

// New returns an empty bookmark set.
func New() *Set {
	return &Set{}
}

// Reconstitute rebuilds a set from persisted pages, dropping invalid
// entries and duplicates, sorting, and truncating to capacity.
func Reconstitute(pages []int) *Set {
	s := New()
	for _, p := range pages {
		s.Add(p)
	}
	return s
}

// Add inserts page keeping the set sorted. Returns Duplicate when the page
// is already present, AtCapacity when the set is full, and InvalidPage for
// non-positive pages.
func (s *Set) Add(page int) AddResult {
	if page < 1 {
		return InvalidPage
	}
	i := sort.SearchInts(s.pages, page)
	if i < len(s.pages) && s.pages[i] == page {
		return Duplicate
	}
	if len(s.pages) >= Capacity {
		return AtCapacity
	}
	s.pages = append(s.pages, 0)
	copy(s.pages[i+1:], s.pages[i:])
	s.pages[i] = page
	return Added
}

// Remove deletes page from the set, reporting whether it was present.
func (s *Set) Remove(page int) bool {
	i := sort.SearchInts(s.pages, page)
	if i >= len(s.pages) || s.pages[i] != page {
		return false
	}
	s.pages = append(s.pages[:i], s.pages[i+1:]...)
	return true
}

// Contains reports whether page is bookmarked.
func (s *Set) Contains(page int) bool {
	i := sort.SearchInts(s.pages, page)
	return i < len(s.pages) && s.pages[i] == page
}

// NextAfter returns the smallest bookmark strictly greater than page.
// Returns false instead of wrapping when no such bookmark exists.
func (s *Set) NextAfter(page int) (int, bool) {
	i := sort.SearchInts(s.pages, page+1)
	if i >= len(s.pages) {
		return 0, false
	}
	return s.pages[i], true
}

// PrevBefore returns the largest bookmark strictly less than page.
// Returns false instead of wrapping when no such bookmark exists.
func (s *Set) PrevBefore(page int) (int, bool) {
	i := sort.SearchInts(s.pages, page)
	if i == 0 {
		return 0, false
	}
	return s.pages[i-1], true
}

// Pages returns a sorted copy of the bookmarked pages.
func (s *Set) Pages() []int {
	cp := make([]int, len(s.pages))
	copy(cp, s.pages)
	return cp
}

// Len returns the number of bookmarks.
func (s *Set) Len() int {
	return len(s.pages)
}

// Clone returns an independent copy sharing no state with the receiver.
func (s *Set) Clone() *Set {
	return &Set{pages: s.Pages()}
}
