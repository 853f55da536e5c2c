package formflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiRowFormState_AddRowIDsNeverReused(t *testing.T) {
	s := NewMultiRowFormState()
	seen := make(map[uint64]bool)
	for i := 0; i < 5; i++ {
		id := s.AddRow()
		require.False(t, seen[id])
		seen[id] = true
	}

	// Removing and re-adding must not reuse an id.
	var last uint64
	for id := range seen {
		if id > last {
			last = id
		}
	}
	for id := range seen {
		require.True(t, s.RemoveRow(id))
	}
	require.Greater(t, s.AddRow(), last)
}

func TestRemoveRow_UnpersistedRowDroppedOutright(t *testing.T) {
	s := NewMultiRowFormState()
	id := s.AddRow()
	require.True(t, s.RemoveRow(id))
	require.Len(t, s.Rows(), 0)
	require.False(t, s.RemoveRow(id))
}

func TestRemoveRow_PersistedRowMarkedAndRetained(t *testing.T) {
	s := NewMultiRowFormState()
	id := s.LoadRow("srv-10", map[Level]string{LevelSite: "s1"}, nil)
	require.True(t, s.RemoveRow(id))

	require.Len(t, s.Rows(), 1)
	row, ok := s.Row(id)
	require.True(t, ok)
	require.True(t, row.MarkedForDeletion)
	require.Equal(t, 0, s.VisibleCount())
}

func TestVisibleRows_InsertionOrderAndRestartable(t *testing.T) {
	s := NewMultiRowFormState()
	a := s.AddRow()
	b := s.LoadRow("srv-1", nil, nil)
	c := s.AddRow()
	require.True(t, s.RemoveRow(b))

	collect := func() []uint64 {
		var ids []uint64
		for row := range s.VisibleRows() {
			ids = append(ids, row.RowID)
		}
		return ids
	}

	require.Equal(t, []uint64{a, c}, collect())
	// Recomputed on each call, not cached.
	require.Equal(t, []uint64{a, c}, collect())

	d := s.AddRow()
	require.Equal(t, []uint64{a, c, d}, collect())
}

func TestCompact_DropsMarkedRows(t *testing.T) {
	s := NewMultiRowFormState()
	kept := s.LoadRow("srv-1", nil, nil)
	gone := s.LoadRow("srv-2", nil, nil)
	require.True(t, s.RemoveRow(gone))

	s.Compact()
	require.Len(t, s.Rows(), 1)
	require.Equal(t, kept, s.Rows()[0].RowID)
}
