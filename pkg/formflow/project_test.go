package formflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProject_SplitsCreatesUpdatesDeletes(t *testing.T) {
	snapshot := NewFormSnapshot()
	snapshot.Shared[SharedSurveyID] = "survey-7"

	row10 := snapshot.Form.LoadRow("10", map[Level]string{LevelSite: "s1", LevelBuilding: "b1"}, nil)
	snapshot.Form.LoadRow("11", map[Level]string{LevelSite: "s2"}, nil)
	require.True(t, snapshot.Form.RemoveRow(row10))

	added := snapshot.Form.AddRow()
	_, err := snapshot.Form.UpdateSelection(added, LevelSite, "s3")
	require.NoError(t, err)

	payload := Project(snapshot)

	require.Len(t, payload.Creates, 1)
	require.Equal(t, OpCreate, payload.Creates[0].Op)
	require.Empty(t, payload.Creates[0].ID)
	require.NotNil(t, payload.Creates[0].SiteID)
	require.Equal(t, "s3", *payload.Creates[0].SiteID)

	require.Len(t, payload.Updates, 1)
	require.Equal(t, OpUpdate, payload.Updates[0].Op)
	require.Equal(t, "11", payload.Updates[0].ID)

	require.Len(t, payload.Deletes, 1)
	require.Equal(t, OpDelete, payload.Deletes[0].Op)
	require.Equal(t, "10", payload.Deletes[0].ID)
}

func TestProject_Idempotent(t *testing.T) {
	snapshot := NewFormSnapshot()
	snapshot.Shared[SharedSurveyID] = "survey-1"
	snapshot.Form.LoadRow("42", map[Level]string{LevelSite: "s1"}, map[string]string{FieldDay: "Monday"})
	id := snapshot.Form.AddRow()
	_, err := snapshot.Form.UpdateSelection(id, LevelSite, "s2")
	require.NoError(t, err)

	first := Project(snapshot)
	second := Project(snapshot)
	require.Equal(t, first, second)
}

func TestProject_RemovedUnpersistedRowLeavesNoTrace(t *testing.T) {
	snapshot := NewFormSnapshot()
	id := snapshot.Form.AddRow()
	_, err := snapshot.Form.UpdateSelection(id, LevelSite, "s1")
	require.NoError(t, err)
	require.True(t, snapshot.Form.RemoveRow(id))

	payload := Project(snapshot)
	require.Empty(t, payload.Creates)
	require.Empty(t, payload.Updates)
	require.Empty(t, payload.Deletes)
}

func TestProject_MarkedPersistedRowDeletedExactlyOnce(t *testing.T) {
	snapshot := NewFormSnapshot()
	id := snapshot.Form.LoadRow("77", map[Level]string{LevelSite: "s1"}, nil)
	require.True(t, snapshot.Form.RemoveRow(id))

	payload := Project(snapshot)
	require.Len(t, payload.Deletes, 1)
	require.Equal(t, "77", payload.Deletes[0].ID)
	require.Empty(t, payload.Updates)
	require.Empty(t, payload.Creates)
}

func TestProject_SparseFieldsOmitEmptyLevels(t *testing.T) {
	snapshot := NewFormSnapshot()
	id := snapshot.Form.AddRow()
	_, err := snapshot.Form.UpdateSelection(id, LevelSite, "s1")
	require.NoError(t, err)
	_, err = snapshot.Form.UpdateSelection(id, LevelBuilding, "b1")
	require.NoError(t, err)

	item := Project(snapshot).Creates[0]
	require.NotNil(t, item.SiteID)
	require.NotNil(t, item.BuildingID)
	require.Nil(t, item.WingID)
	require.Nil(t, item.AreaID)
	require.Nil(t, item.FloorID)
	require.Nil(t, item.RoomID)
}
