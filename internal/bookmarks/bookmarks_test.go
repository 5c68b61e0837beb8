package bookmarks

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAdd_Outcomes(t *testing.T) {
	s := New()

	require.Equal(t, Added, s.Add(5))
	require.Equal(t, Duplicate, s.Add(5))
	require.Equal(t, 1, s.Len(), "duplicate insert must not grow the set")

	require.Equal(t, InvalidPage, s.Add(0))
	require.Equal(t, InvalidPage, s.Add(-3))
}

func TestAdd_CapacityRejected(t *testing.T) {
	s := New()
	for p := 1; p <= Capacity; p++ {
		require.Equal(t, Added, s.Add(p))
	}
	require.Equal(t, AtCapacity, s.Add(Capacity+1))
	require.Equal(t, Capacity, s.Len())
}

func TestAdd_KeepsSorted(t *testing.T) {
	s := New()
	for _, p := range []int{9, 2, 7, 1, 5} {
		s.Add(p)
	}
	require.Equal(t, []int{1, 2, 5, 7, 9}, s.Pages())
}

func TestRemove(t *testing.T) {
	s := Reconstitute([]int{3, 8, 12})
	require.True(t, s.Remove(8))
	require.False(t, s.Remove(8))
	require.Equal(t, []int{3, 12}, s.Pages())
}

func TestNextAfter_PrevBefore(t *testing.T) {
	s := Reconstitute([]int{5})

	// From page 5 there is no strictly-greater bookmark; no wrapping.
	_, ok := s.NextAfter(5)
	require.False(t, ok)

	next, ok := s.NextAfter(1)
	require.True(t, ok)
	require.Equal(t, 5, next)

	_, ok = s.PrevBefore(5)
	require.False(t, ok)

	s.Add(2)
	s.Add(9)
	prev, ok := s.PrevBefore(9)
	require.True(t, ok)
	require.Equal(t, 5, prev)

	next, ok = s.NextAfter(5)
	require.True(t, ok)
	require.Equal(t, 9, next)
}

func TestReconstitute_SanitizesInput(t *testing.T) {
	s := Reconstitute([]int{4, -1, 4, 0, 2})
	require.Equal(t, []int{2, 4}, s.Pages())
}

func TestClone_IsIndependent(t *testing.T) {
	s := Reconstitute([]int{1, 2})
	c := s.Clone()
	c.Add(3)
	require.Equal(t, 2, s.Len())
	require.Equal(t, 3, c.Len())
}

// TestInvariants checks size bounds, ordering, and dedup over random
// insert/remove sequences.
func TestInvariants(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		s := New()
		n := rapid.IntRange(0, 300).Draw(r, "ops")
		for i := 0; i < n; i++ {
			page := rapid.IntRange(-2, 100).Draw(r, "page")
			if rapid.Bool().Draw(r, "insert") {
				s.Add(page)
			} else {
				s.Remove(page)
			}
		}
		pages := s.Pages()
		if len(pages) > Capacity {
			r.Fatalf("set size %d exceeds capacity", len(pages))
		}
		if !sort.IntsAreSorted(pages) {
			r.Fatalf("pages not sorted: %v", pages)
		}
		seen := map[int]bool{}
		for _, p := range pages {
			if p < 1 {
				r.Fatalf("invalid page %d in set", p)
			}
			if seen[p] {
				r.Fatalf("duplicate page %d in set", p)
			}
			seen[p] = true
		}
	})
}
