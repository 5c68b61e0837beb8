package history

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRecord_TruncatesForwardBranch(t *testing.T) {
	h := New(1)
	h.Record(2)
	h.Record(3)

	page, ok := h.Back()
	require.True(t, ok)
	require.Equal(t, 2, page)

	// Recording while mid-history discards the abandoned forward branch.
	h.Record(7)
	require.Equal(t, []int{1, 2, 7}, h.Pages())
	require.Equal(t, 7, h.Current())
	require.False(t, h.CanForward())
}

func TestRecord_SuppressesConsecutiveDuplicates(t *testing.T) {
	h := New(5)
	h.Record(5)
	h.Record(5)
	require.Equal(t, []int{5}, h.Pages())

	h.Record(6)
	h.Record(6)
	require.Equal(t, []int{5, 6}, h.Pages())
}

func TestBackForward_NoOpAtBounds(t *testing.T) {
	h := New(1)
	h.Record(2)

	_, ok := h.Forward()
	require.False(t, ok, "forward at tail is a no-op")

	page, ok := h.Back()
	require.True(t, ok)
	require.Equal(t, 1, page)

	_, ok = h.Back()
	require.False(t, ok, "back at head is a no-op")
	require.Equal(t, 1, h.Current())

	page, ok = h.Forward()
	require.True(t, ok)
	require.Equal(t, 2, page)
}

func TestSeek_ClampsSilently(t *testing.T) {
	h := New(1)
	h.Record(2)
	h.Record(3)

	_, ok := h.Seek(-10)
	require.False(t, ok)
	require.Equal(t, 3, h.Current(), "out-of-range seek must not move the cursor")

	page, ok := h.Seek(-2)
	require.True(t, ok)
	require.Equal(t, 1, page)

	_, ok = h.Seek(0)
	require.False(t, ok)
}

func TestRecord_TrimsBeyondCapacity(t *testing.T) {
	h := New(0)
	for p := 1; p <= Capacity+20; p++ {
		h.Record(p)
	}
	require.Equal(t, Capacity, h.Len())
	require.Equal(t, Capacity-1, h.Index())
	require.Equal(t, Capacity+20, h.Current())

	// The oldest entries were dropped, not the newest.
	pages := h.Pages()
	require.Equal(t, 21, pages[0])
}

func TestReconstitute(t *testing.T) {
	t.Run("empty falls back to single entry", func(t *testing.T) {
		h := Reconstitute(nil, 3, 9)
		require.Equal(t, []int{9}, h.Pages())
		require.Equal(t, 0, h.Index())
	})

	t.Run("cursor clamped into sequence", func(t *testing.T) {
		h := Reconstitute([]int{1, 2, 3}, 99, 1)
		require.Equal(t, 2, h.Index())
		h = Reconstitute([]int{1, 2, 3}, -4, 1)
		require.Equal(t, 0, h.Index())
	})

	t.Run("oversized sequence trimmed from the front", func(t *testing.T) {
		pages := make([]int, Capacity+10)
		for i := range pages {
			pages[i] = i
		}
		h := Reconstitute(pages, len(pages)-1, 0)
		require.Equal(t, Capacity, h.Len())
		require.Equal(t, Capacity+9, h.Current())
	})
}

func TestClone_IsIndependent(t *testing.T) {
	h := New(1)
	h.Record(2)

	c := h.Clone()
	c.Record(3)

	require.Equal(t, []int{1, 2}, h.Pages())
	require.Equal(t, []int{1, 2, 3}, c.Pages())
}

// TestInvariants exercises random command sequences and checks the cursor
// always stays inside the bounded sequence.
func TestInvariants(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		h := New(1)
		n := rapid.IntRange(0, 200).Draw(r, "ops")
		for i := 0; i < n; i++ {
			switch rapid.IntRange(0, 2).Draw(r, "op") {
			case 0:
				h.Record(rapid.IntRange(1, 30).Draw(r, "page"))
			case 1:
				h.Back()
			case 2:
				h.Forward()
			}
			if h.Len() > Capacity {
				r.Fatalf("length %d exceeds capacity", h.Len())
			}
			if h.Index() < 0 || h.Index() >= h.Len() {
				r.Fatalf("cursor %d outside [0, %d)", h.Index(), h.Len())
			}
		}
	})
}
