package formflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLevelChange_ClearsOnlyDeeperLevels(t *testing.T) {
	s := NewMultiRowFormState()
	rowID := s.AddRow()
	row, _ := s.Row(rowID)
	row.Selection = map[Level]string{
		LevelSite:     "s1",
		LevelBuilding: "b1",
		LevelWing:     "w1",
		LevelArea:     "a1",
	}

	res := ResolveLevelChange(row, LevelBuilding, "b2")
	require.Equal(t, []Level{LevelWing, LevelArea, LevelFloor, LevelRoom}, res.ClearedLevels)
	require.Len(t, res.FetchRequests, 1)
	require.Equal(t, FetchRequest{RowID: rowID, Level: LevelWing, ParentID: "b2"}, res.FetchRequests[0])
}

func TestResolveLevelChange_DeselectClearsWithoutFetch(t *testing.T) {
	s := NewMultiRowFormState()
	rowID := s.AddRow()
	row, _ := s.Row(rowID)
	row.Selection = map[Level]string{LevelSite: "s1", LevelBuilding: "b1"}

	res := ResolveLevelChange(row, LevelSite, "")
	require.Equal(t, LevelSite.Descendants(), res.ClearedLevels)
	require.Empty(t, res.FetchRequests)
}

func TestResolveLevelChange_LeafLevelIssuesNoFetch(t *testing.T) {
	s := NewMultiRowFormState()
	rowID := s.AddRow()
	row, _ := s.Row(rowID)

	res := ResolveLevelChange(row, LevelRoom, "r1")
	require.Empty(t, res.ClearedLevels)
	require.Empty(t, res.FetchRequests)
}

func TestUpdateSelection_IdempotentClear(t *testing.T) {
	s := NewMultiRowFormState()
	rowID := s.AddRow()

	_, err := s.UpdateSelection(rowID, LevelSite, "s1")
	require.NoError(t, err)
	_, err = s.UpdateSelection(rowID, LevelBuilding, "b1")
	require.NoError(t, err)
	_, err = s.UpdateSelection(rowID, LevelWing, "w1")
	require.NoError(t, err)

	// Clearing a level whose descendants are already empty is a no-op.
	_, err = s.UpdateSelection(rowID, LevelWing, "")
	require.NoError(t, err)
	_, err = s.UpdateSelection(rowID, LevelWing, "")
	require.NoError(t, err)

	row, _ := s.Row(rowID)
	require.Equal(t, map[Level]string{LevelSite: "s1", LevelBuilding: "b1"}, row.Selection)
}

func TestUpdateSelection_DoesNotTouchSiblingRows(t *testing.T) {
	s := NewMultiRowFormState()
	first := s.AddRow()
	second := s.AddRow()

	_, err := s.UpdateSelection(first, LevelSite, "s1")
	require.NoError(t, err)
	_, err = s.UpdateSelection(second, LevelSite, "s9")
	require.NoError(t, err)
	_, err = s.UpdateSelection(second, LevelBuilding, "b9")
	require.NoError(t, err)

	// Change on the first row must not affect the second.
	_, err = s.UpdateSelection(first, LevelSite, "s2")
	require.NoError(t, err)

	other, _ := s.Row(second)
	require.Equal(t, "s9", other.Value(LevelSite))
	require.Equal(t, "b9", other.Value(LevelBuilding))
}

func TestLevel_ParentChildRoundTrip(t *testing.T) {
	for i, level := range Hierarchy {
		child, ok := level.Child()
		if i == len(Hierarchy)-1 {
			require.False(t, ok)
			continue
		}
		require.True(t, ok)
		parent, ok := child.Parent()
		require.True(t, ok)
		require.Equal(t, level, parent)
	}

	_, ok := LevelSite.Parent()
	require.False(t, ok)

	_, err := ParseLevel("warehouse")
	require.Error(t, err)
}
