package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPutMergesPartialUpdates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "w1", Fields{"id": "w1", "page": float64(3)}, nil, PutOptions{}))
	require.NoError(t, m.Put(ctx, "w1", Fields{"id": "w1", "title": "Notes"}, nil, PutOptions{}))

	entry, err := m.Get(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, float64(3), entry.Fields["page"])
	require.Equal(t, "Notes", entry.Fields["title"])
}

func TestPutPreservesPayloadUnlessIncluded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	payload := []byte("document bytes")
	require.NoError(t, m.Put(ctx, "w1", Fields{"id": "w1"}, payload, PutOptions{IncludePayload: true}))

	// A fields-only update must leave the payload alone.
	require.NoError(t, m.Put(ctx, "w1", Fields{"page": float64(7)}, nil, PutOptions{}))

	entry, err := m.Get(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, payload, entry.Payload)
	require.Equal(t, float64(7), entry.Fields["page"])

	// An explicit nil payload write clears it.
	require.NoError(t, m.Put(ctx, "w1", Fields{}, nil, PutOptions{IncludePayload: true}))
	entry, err = m.Get(ctx, "w1")
	require.NoError(t, err)
	require.Empty(t, entry.Payload)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveMissingIsNotAnError(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Remove(context.Background(), "missing"))
}

func TestClearLeavesPreferences(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "w1", Fields{"id": "w1"}, nil, PutOptions{}))
	require.NoError(t, m.SetPreference(ctx, "theme", "dark"))
	require.NoError(t, m.Clear(ctx))

	all, err := m.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	theme, err := m.Preference(ctx, "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", theme)
}

func TestGetAllOrderedByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, m.Put(ctx, id, Fields{"id": id}, nil, PutOptions{}))
	}

	all, err := m.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "a", all[0].ID)
	require.Equal(t, "b", all[1].ID)
	require.Equal(t, "c", all[2].ID)
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, "w1", Fields{"title": "before"}, nil, PutOptions{}))

	entry, err := m.Get(ctx, "w1")
	require.NoError(t, err)
	entry.Fields["title"] = "mutated"

	again, err := m.Get(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, "before", again.Fields["title"])
}

func TestMergeFieldsUpdateWins(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		keys := rapid.SliceOfDistinct(
			rapid.StringMatching(`[a-z]{1,8}`),
			func(s string) string { return s },
		).Draw(rt, "keys")

		existing := Fields{}
		update := Fields{}
		for i, k := range keys {
			existing[k] = "old"
			if i%2 == 0 {
				update[k] = "new"
			}
		}

		merged := MergeFields(existing, update)
		for i, k := range keys {
			if i%2 == 0 {
				require.Equal(rt, "new", merged[k])
			} else {
				require.Equal(rt, "old", merged[k])
			}
		}
	})
}
